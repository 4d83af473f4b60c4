// Package cmd provides the CLI commands for hybridctl.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lumensearch/hybrid/internal/applog"
	"github.com/lumensearch/hybrid/pkg/version"
)

var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the hybridctl CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hybridctl",
		Short:   "Hybrid lexical/vector search over a local document corpus",
		Long:    `hybridctl indexes documents into a BM25FS+ lexical index and a flat vector index, and serves fused search over them directly or through an MCP server.`,
		Version: version.Version,
	}
	cmd.SetVersionTemplate("hybridctl version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging to ~/.hybridctl/logs/")
	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newServeMCPCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newDetectCmd())
	cmd.AddCommand(newTUICmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func startLogging(_ *cobra.Command, _ []string) error {
	cfg := applog.DefaultConfig()
	if debugMode {
		cfg = applog.DebugConfig()
	}
	logger, cleanup, err := applog.Setup(cfg)
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
