package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lumensearch/hybrid/internal/corpus"
	"github.com/lumensearch/hybrid/internal/mcpserver"
)

func newServeMCPCmd() *cobra.Command {
	var transport string
	var configDir string

	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Run the MCP server over the configured corpus",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, configDir, transport)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "MCP transport (stdio)")
	cmd.Flags().StringVar(&configDir, "config-dir", "", "directory to load .hybridctl.yaml from (default: current directory)")
	return cmd
}

func runServe(cmd *cobra.Command, configDir, transport string) error {
	if configDir == "" {
		configDir = workingDir()
	}

	ctx := cmd.Context()
	engine, store, _, err := openEngine(ctx, configDir)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	defer func() { _ = store.Close() }()

	slog.Info("corpus loaded", "document_count", engine.Stats().DocumentCount)

	srv := mcpserver.New(engine, slog.Default(), mcpserver.WithPersister(corpus.NewPersister(store)))
	return srv.Serve(ctx, transport)
}
