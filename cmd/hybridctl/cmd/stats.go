package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var configDir string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Report document and vector counts for the corpus",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, configDir, jsonOut)
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "directory to load .hybridctl.yaml from (default: current directory)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output stats as JSON")
	return cmd
}

func runStats(cmd *cobra.Command, configDir string, jsonOut bool) error {
	if configDir == "" {
		configDir = workingDir()
	}

	ctx := cmd.Context()
	engine, store, _, err := openEngine(ctx, configDir)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	defer func() { _ = store.Close() }()

	stats := engine.Stats()
	if jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "documents: %d\nvectors:   %d\ndimension: %d\n",
		stats.DocumentCount, stats.VectorCount, stats.VectorDimension)
	return nil
}
