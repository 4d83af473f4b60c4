package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lumensearch/hybrid/internal/hconfig"
	"github.com/lumensearch/hybrid/internal/langid"
)

func newDetectCmd() *cobra.Command {
	var configDir string
	var modelPath string

	cmd := &cobra.Command{
		Use:   "detect <text>",
		Short: "Identify the language of a piece of text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, configDir, modelPath, args[0])
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "directory to load .hybridctl.yaml from (default: current directory)")
	cmd.Flags().StringVar(&modelPath, "model", "", "path to a quantised fastText-compatible model (default: langid.model_path from config)")
	return cmd
}

func runDetect(cmd *cobra.Command, configDir, modelPath, text string) error {
	if configDir == "" {
		configDir = workingDir()
	}

	cfg, err := hconfig.Load(configDir)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}
	if modelPath == "" {
		modelPath = cfg.LangID.ModelPath
	}
	if modelPath == "" {
		return fmt.Errorf("detect: no model path configured; set --model or langid.model_path")
	}

	model, err := langid.LoadCached(modelPath, langidCacheDir())
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}

	prediction, err := model.Predict(text)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %.4f\n", prediction.Label, prediction.Probability)
	return nil
}

// langidCacheDir returns the directory hybridctl mirrors LangID models
// into. `detect` still reads and parses the configured model path on
// every run; the mirror is only written, never loaded from.
func langidCacheDir() string {
	return filepath.Join(hconfig.UserConfigDir(), "langid-cache")
}
