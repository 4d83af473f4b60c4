package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumensearch/hybrid"
	"github.com/lumensearch/hybrid/internal/corpus"
)

func newDeleteCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a document from the corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, configDir, args[0])
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "directory to load .hybridctl.yaml from (default: current directory)")
	return cmd
}

func runDelete(cmd *cobra.Command, configDir, id string) error {
	if configDir == "" {
		configDir = workingDir()
	}

	ctx := cmd.Context()
	engine, store, _, err := openEngine(ctx, configDir)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := engine.Delete(hybrid.DocumentID(id)); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if err := corpus.NewPersister(store).Delete(ctx, id); err != nil {
		return fmt.Errorf("delete: persist: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
	return nil
}
