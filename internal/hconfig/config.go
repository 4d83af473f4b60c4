// Package hconfig loads hybridctl's YAML configuration: field weights,
// tokenizer settings, fusion defaults and corpus/server options, with
// environment variable overrides for the values operators tune most.
package hconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lumensearch/hybrid"
)

// FieldConfig configures one schema field's BM25FS⁺ weight. Kind, if
// set, is one of the canonical field roles (TITLE, CONTENT, ...) and
// supplies the defaults for Weight/B; an explicit non-zero Weight or B
// overrides the kind's default for that value only.
type FieldConfig struct {
	Kind   string  `yaml:"kind" json:"kind"`
	Weight float64 `yaml:"weight" json:"weight"`
	B      float64 `yaml:"b" json:"b"`
}

// TokenizerConfig configures the shared text pipeline.
type TokenizerConfig struct {
	StopWords        []string `yaml:"stop_words" json:"stop_words"`
	StopWordsEnabled bool     `yaml:"stop_words_enabled" json:"stop_words_enabled"`
	StemmingEnabled  bool     `yaml:"stemming_enabled" json:"stemming_enabled"`
	MinTokenLength   int      `yaml:"min_token_length" json:"min_token_length"`
	MaxTokenLength   int      `yaml:"max_token_length" json:"max_token_length"`
}

// SearchConfig configures fusion and default result sizing.
type SearchConfig struct {
	// FusionStrategy is one of "rrf", "combsum", "weighted".
	FusionStrategy string `yaml:"fusion_strategy" json:"fusion_strategy"`
	// Alpha blends text/vector scores under the weighted strategy.
	Alpha float64 `yaml:"alpha" json:"alpha"`
	// RRFConstant is the RRF smoothing constant k.
	RRFConstant int `yaml:"rrf_constant" json:"rrf_constant"`
	// DefaultTopK is loaded and validated but not read by any command;
	// hybridctl's result limits come from command flags and MCP tool
	// arguments.
	DefaultTopK int `yaml:"default_top_k" json:"default_top_k"`
	// MaxFuzzyEdits is loaded and validated but not read by any command;
	// SearchFuzzy clamps maxEdits to flatscan.MaxEdits.
	MaxFuzzyEdits int `yaml:"max_fuzzy_edits" json:"max_fuzzy_edits"`
}

// ServerConfig configures the MCP server transport and logging.
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// CorpusConfig configures the on-disk document store backing hybridctl.
type CorpusConfig struct {
	// DBPath is the SQLite database file holding ingested documents.
	DBPath string `yaml:"db_path" json:"db_path"`
}

// LangIDConfig configures language identification.
type LangIDConfig struct {
	// Enabled is loaded from config (and set when a model path is given),
	// but ingest performs no language detection; only `detect` uses the
	// model.
	Enabled bool `yaml:"enabled" json:"enabled"`
	// ModelPath is the path to a quantised fastText-compatible model.
	ModelPath string `yaml:"model_path" json:"model_path"`
}

// Config is hybridctl's complete configuration.
type Config struct {
	Version   int                    `yaml:"version" json:"version"`
	Fields    map[string]FieldConfig `yaml:"fields" json:"fields"`
	Tokenizer TokenizerConfig        `yaml:"tokenizer" json:"tokenizer"`
	Search    SearchConfig           `yaml:"search" json:"search"`
	Server    ServerConfig           `yaml:"server" json:"server"`
	Corpus    CorpusConfig           `yaml:"corpus" json:"corpus"`
	LangID    LangIDConfig           `yaml:"langid" json:"langid"`
}

// New returns a Config with sensible defaults.
func New() *Config {
	return &Config{
		Version: 1,
		Fields:  map[string]FieldConfig{},
		Tokenizer: TokenizerConfig{
			StopWordsEnabled: true,
			StemmingEnabled:  true,
			MinTokenLength:   2,
			MaxTokenLength:   50,
		},
		Search: SearchConfig{
			FusionStrategy: "rrf",
			Alpha:          0.5,
			RRFConstant:    60,
			DefaultTopK:    10,
			MaxFuzzyEdits:  4,
		},
		Server: ServerConfig{
			Transport: "stdio",
			LogLevel:  "info",
		},
		Corpus: CorpusConfig{
			DBPath: defaultCorpusPath(),
		},
		LangID: LangIDConfig{Enabled: false},
	}
}

func defaultCorpusPath() string {
	return filepath.Join(UserConfigDir(), "corpus.db")
}

// UserConfigDir returns the directory hybridctl keeps its per-user
// state in (corpus database, logs, cached model files), falling back
// to a temp directory if the home directory can't be resolved.
func UserConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".hybridctl")
	}
	return filepath.Join(home, ".hybridctl")
}

// Load builds a Config from defaults, then dir/.hybridctl.yaml (or
// .yml) if present, then HYBRIDCTL_* environment overrides, then
// validates the result.
func Load(dir string) (*Config, error) {
	cfg := New()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{".hybridctl.yaml", ".hybridctl.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return c.loadYAML(path)
	}
	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	c.mergeWith(&parsed)
	return nil
}

func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	for name, fw := range other.Fields {
		c.Fields[name] = fw
	}

	if len(other.Tokenizer.StopWords) > 0 {
		c.Tokenizer.StopWords = other.Tokenizer.StopWords
	}
	if other.Tokenizer.MinTokenLength != 0 {
		c.Tokenizer.MinTokenLength = other.Tokenizer.MinTokenLength
	}
	if other.Tokenizer.MaxTokenLength != 0 {
		c.Tokenizer.MaxTokenLength = other.Tokenizer.MaxTokenLength
	}

	if other.Search.FusionStrategy != "" {
		c.Search.FusionStrategy = other.Search.FusionStrategy
	}
	if other.Search.Alpha != 0 {
		c.Search.Alpha = other.Search.Alpha
	}
	if other.Search.RRFConstant != 0 {
		c.Search.RRFConstant = other.Search.RRFConstant
	}
	if other.Search.DefaultTopK != 0 {
		c.Search.DefaultTopK = other.Search.DefaultTopK
	}
	if other.Search.MaxFuzzyEdits != 0 {
		c.Search.MaxFuzzyEdits = other.Search.MaxFuzzyEdits
	}

	if other.Server.Transport != "" {
		c.Server.Transport = other.Server.Transport
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}

	if other.Corpus.DBPath != "" {
		c.Corpus.DBPath = other.Corpus.DBPath
	}

	if other.LangID.ModelPath != "" {
		c.LangID.ModelPath = other.LangID.ModelPath
		c.LangID.Enabled = true
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("HYBRIDCTL_FUSION_STRATEGY"); v != "" {
		c.Search.FusionStrategy = v
	}
	if v := os.Getenv("HYBRIDCTL_ALPHA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			c.Search.Alpha = f
		}
	}
	if v := os.Getenv("HYBRIDCTL_RRF_CONSTANT"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			c.Search.RRFConstant = k
		}
	}
	if v := os.Getenv("HYBRIDCTL_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("HYBRIDCTL_TRANSPORT"); v != "" {
		c.Server.Transport = v
	}
	if v := os.Getenv("HYBRIDCTL_CORPUS_DB"); v != "" {
		c.Corpus.DBPath = v
	}
	if v := os.Getenv("HYBRIDCTL_LANGID_MODEL"); v != "" {
		c.LangID.ModelPath = v
		c.LangID.Enabled = true
	}
}

// Validate checks the configuration for internally inconsistent
// values.
func (c *Config) Validate() error {
	if c.Search.Alpha < 0 || c.Search.Alpha > 1 {
		return fmt.Errorf("search.alpha must be between 0 and 1, got %f", c.Search.Alpha)
	}
	if c.Search.RRFConstant <= 0 {
		return fmt.Errorf("search.rrf_constant must be positive, got %d", c.Search.RRFConstant)
	}
	if c.Search.DefaultTopK <= 0 {
		return fmt.Errorf("search.default_top_k must be positive, got %d", c.Search.DefaultTopK)
	}

	validStrategies := map[string]bool{"rrf": true, "combsum": true, "weighted": true}
	if !validStrategies[strings.ToLower(c.Search.FusionStrategy)] {
		return fmt.Errorf("search.fusion_strategy must be 'rrf', 'combsum' or 'weighted', got %s", c.Search.FusionStrategy)
	}

	validTransports := map[string]bool{"stdio": true, "sse": true}
	if !validTransports[strings.ToLower(c.Server.Transport)] {
		return fmt.Errorf("server.transport must be 'stdio' or 'sse', got %s", c.Server.Transport)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("server.log_level must be 'debug', 'info', 'warn' or 'error', got %s", c.Server.LogLevel)
	}

	for name, fw := range c.Fields {
		if fw.Kind != "" {
			if _, ok := hybrid.ParseKind(fw.Kind); !ok {
				return fmt.Errorf("fields.%s.kind %q is not a recognized field kind", name, fw.Kind)
			}
		}
		if fw.Weight < 0 {
			return fmt.Errorf("fields.%s.weight must be non-negative, got %f", name, fw.Weight)
		}
		if fw.B < 0 || fw.B > 1 {
			return fmt.Errorf("fields.%s.b must be between 0 and 1, got %f", name, fw.B)
		}
	}
	return nil
}

// Resolve returns the field's effective FieldWeight: the kind's
// canonical weight/b (or hybrid.DefaultFieldWeight if Kind is unset),
// with any explicit non-zero Weight/B layered on top.
func (fw FieldConfig) Resolve() hybrid.FieldWeight {
	resolved := hybrid.DefaultFieldWeight()
	if fw.Kind != "" {
		if kind, ok := hybrid.ParseKind(fw.Kind); ok {
			resolved = hybrid.NewFieldWeight(kind)
		}
	}
	if fw.Weight != 0 {
		resolved = resolved.WithWeight(fw.Weight)
	}
	if fw.B != 0 {
		resolved = resolved.WithB(fw.B)
	}
	return resolved
}

// WriteYAML writes c to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
