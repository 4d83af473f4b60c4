package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/lumensearch/hybrid"
	"github.com/lumensearch/hybrid/internal/corpus"
	"github.com/lumensearch/hybrid/internal/hconfig"
)

// buildSchema translates loaded configuration into an engine schema.
func buildSchema(cfg *hconfig.Config) hybrid.Schema {
	schema := hybrid.NewSchema()
	schema.Tokenizer = hybrid.TokenizerConfig{
		StopWords:        cfg.Tokenizer.StopWords,
		StopWordsEnabled: cfg.Tokenizer.StopWordsEnabled,
		StemmingEnabled:  cfg.Tokenizer.StemmingEnabled,
		MinTokenLength:   cfg.Tokenizer.MinTokenLength,
		MaxTokenLength:   cfg.Tokenizer.MaxTokenLength,
	}
	for name, fc := range cfg.Fields {
		schema = schema.WithField(name, fc.Resolve())
	}
	return schema
}

// openEngine loads configuration from dir, opens the corpus database
// it points at, and replays every stored document into a fresh
// in-memory engine. Callers must Close the returned corpus.Store.
func openEngine(ctx context.Context, dir string) (*hybrid.Engine, *corpus.Store, *hconfig.Config, error) {
	cfg, err := hconfig.Load(dir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	store, err := corpus.Open(cfg.Corpus.DBPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open corpus: %w", err)
	}

	engine := hybrid.New(buildSchema(cfg), hybrid.WithRRFConstant(cfg.Search.RRFConstant))
	if _, _, err := corpus.Hydrate(ctx, store, engine); err != nil {
		_ = store.Close()
		return nil, nil, nil, fmt.Errorf("hydrate corpus: %w", err)
	}
	return engine, store, cfg, nil
}

func fusionStrategyFromName(name string) hybrid.FusionStrategy {
	switch name {
	case "combsum":
		return hybrid.CombSUM
	case "weighted":
		return hybrid.WeightedSum
	default:
		return hybrid.RRF
	}
}

func workingDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}
