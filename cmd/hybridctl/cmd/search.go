package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lumensearch/hybrid"
)

type searchOptions struct {
	mode      string // text, vector, substring, fuzzy, hybrid
	limit     int
	maxEdits  int
	strategy  string
	alpha     float64
	vector    string // comma-separated floats, for vector/hybrid modes
	configDir string
	jsonOut   bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the corpus",
		Long: `Search the corpus using one of five modes:

  text       BM25FS+ lexical search
  vector     dense vector similarity (--vector required)
  substring  substring match over normalized text
  fuzzy      bounded edit-distance match over normalized text
  hybrid     fused text + vector search (default)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			return runSearch(cmd, query, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "hybrid", "search mode: text, vector, substring, fuzzy, hybrid")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "maximum number of results")
	cmd.Flags().IntVar(&opts.maxEdits, "max-edits", 2, "maximum edit distance for fuzzy mode")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "rrf", "hybrid fusion strategy: rrf, combsum, weighted")
	cmd.Flags().Float64Var(&opts.alpha, "alpha", 0.5, "weighted-strategy blend factor")
	cmd.Flags().StringVar(&opts.vector, "vector", "", "comma-separated query embedding, for vector/hybrid modes")
	cmd.Flags().StringVar(&opts.configDir, "config-dir", "", "directory to load .hybridctl.yaml from (default: current directory)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "output results as JSON")
	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	configDir := opts.configDir
	if configDir == "" {
		configDir = workingDir()
	}

	vector, err := parseVector(opts.vector)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	ctx := cmd.Context()
	engine, store, _, err := openEngine(ctx, configDir)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	defer func() { _ = store.Close() }()

	var results []hybrid.Result
	switch opts.mode {
	case "text":
		results = engine.SearchText(query, opts.limit)
	case "vector":
		if vector == nil {
			return fmt.Errorf("search: --vector is required for vector mode")
		}
		results, err = engine.SearchVector(vector, opts.limit)
	case "substring":
		results = engine.SearchSubstring(query, opts.limit)
	case "fuzzy":
		results = engine.SearchFuzzy(query, opts.limit, opts.maxEdits)
	case "hybrid":
		results, err = engine.SearchHybrid(query, vector, opts.limit, fusionStrategyFromName(opts.strategy), opts.alpha)
	default:
		return fmt.Errorf("search: unknown mode %q", opts.mode)
	}
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	return printResults(cmd, results, opts.jsonOut)
}

func parseVector(raw string) ([]float32, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]float32, len(parts))
	for i, p := range parts {
		var v float32
		if _, err := fmt.Sscanf(strings.TrimSpace(p), "%f", &v); err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}

func printResults(cmd *cobra.Command, results []hybrid.Result, jsonOut bool) error {
	if jsonOut {
		enc := jsonAPI.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no results")
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%-30s %.6f\n", r.ID, r.Score)
	}
	return nil
}
