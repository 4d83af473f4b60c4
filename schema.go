// Package hybrid implements the hybrid lexical/vector search engine:
// ingest orchestration across the BM25FS⁺ lexical index, the flat
// vector index and the flat scan store, plus multi-strategy result
// fusion.
package hybrid

import (
	"strings"

	"github.com/lumensearch/hybrid/internal/bm25f"
	"github.com/lumensearch/hybrid/internal/textproc"
)

// Kind is the closed enumeration of semantic field roles, each
// carrying a canonical (weight, b) pair so a schema field can be
// built from its role instead of hand-rolled numbers.
type Kind int

const (
	// KindUnspecified has no canonical pair; NewFieldWeight falls back
	// to DefaultFieldWeight for it.
	KindUnspecified Kind = iota
	KindTitle
	KindContent
	KindDescription
	KindHeading
	KindTags
	KindAuthor
	KindDate
	KindReference
)

// KindText is an alias for KindContent ("CONTENT / TEXT" in the kind
// table).
const KindText = KindContent

// String returns the kind's canonical name, as used by ParseKind.
func (k Kind) String() string {
	switch k {
	case KindTitle:
		return "TITLE"
	case KindContent:
		return "CONTENT"
	case KindDescription:
		return "DESCRIPTION"
	case KindHeading:
		return "HEADING"
	case KindTags:
		return "TAGS"
	case KindAuthor:
		return "AUTHOR"
	case KindDate:
		return "DATE"
	case KindReference:
		return "REFERENCE"
	default:
		return "UNSPECIFIED"
	}
}

// ParseKind looks up a Kind by its canonical name (case-insensitive;
// "TEXT" is accepted as an alias for CONTENT). The second return value
// is false for an unrecognized name.
func ParseKind(name string) (Kind, bool) {
	switch strings.ToUpper(name) {
	case "TITLE":
		return KindTitle, true
	case "CONTENT", "TEXT":
		return KindContent, true
	case "DESCRIPTION":
		return KindDescription, true
	case "HEADING":
		return KindHeading, true
	case "TAGS":
		return KindTags, true
	case "AUTHOR":
		return KindAuthor, true
	case "DATE":
		return KindDate, true
	case "REFERENCE":
		return KindReference, true
	default:
		return KindUnspecified, false
	}
}

// defaultWeightB returns the kind's canonical (weight, b) pair.
func (k Kind) defaultWeightB() (float64, float64) {
	switch k {
	case KindTitle:
		return 2.5, 0.75
	case KindContent:
		return 1.0, 0.75
	case KindDescription:
		return 1.5, 0.75
	case KindHeading:
		return 2.0, 0.75
	case KindTags:
		return 1.8, 0.50
	case KindAuthor:
		return 1.2, 0.60
	case KindDate:
		return 0.8, 0.50
	case KindReference:
		return 0.6, 0.50
	default:
		return 1.0, 0.75
	}
}

// FieldWeight mirrors internal/bm25f.FieldWeight at the public API
// boundary, plus the field's Kind (so a schema can mark a field as
// text even when its default weight/b are used unmodified).
type FieldWeight struct {
	Kind   Kind
	Weight float64
	B      float64
}

func (w FieldWeight) toBM25F() bm25f.FieldWeight {
	return bm25f.FieldWeight{Weight: w.Weight, B: w.B}
}

// DefaultFieldWeight is weight=1, b=0.75.
func DefaultFieldWeight() FieldWeight {
	return FieldWeight{Weight: 1.0, B: 0.75}
}

// NewFieldWeight returns kind's canonical weight/b pair (falling back
// to DefaultFieldWeight for KindUnspecified). Chain WithWeight/WithB to
// override either value before passing the result to Schema.WithField.
func NewFieldWeight(kind Kind) FieldWeight {
	if kind == KindUnspecified {
		fw := DefaultFieldWeight()
		fw.Kind = kind
		return fw
	}
	weight, b := kind.defaultWeightB()
	return FieldWeight{Kind: kind, Weight: weight, B: b}
}

// WithWeight overrides the field's weight.
func (w FieldWeight) WithWeight(weight float64) FieldWeight {
	w.Weight = weight
	return w
}

// WithB overrides the field's length-normalization b.
func (w FieldWeight) WithB(b float64) FieldWeight {
	w.B = b
	return w
}

// TokenizerConfig configures the text pipeline shared by every text
// field. Defaults: stop words and stemming both on, 2..50 characters.
// There is no built-in stop-word list: StopWordsEnabled filters only the
// words given in StopWords, so the default config drops no stop words.
type TokenizerConfig struct {
	StopWords        []string
	StopWordsEnabled bool
	StemmingEnabled  bool
	MinTokenLength   int
	MaxTokenLength   int
}

// DefaultTokenizerConfig matches the spec's documented defaults.
func DefaultTokenizerConfig() TokenizerConfig {
	return TokenizerConfig{
		StopWordsEnabled: true,
		StemmingEnabled:  true,
		MinTokenLength:   2,
		MaxTokenLength:   50,
	}
}

func (c TokenizerConfig) toProcessor() *textproc.Processor {
	opts := textproc.Options{
		MinLen: c.MinTokenLength,
		MaxLen: c.MaxTokenLength,
		Stem:   c.StemmingEnabled,
	}
	if c.StopWordsEnabled && len(c.StopWords) > 0 {
		opts.StopWords = textproc.BuildStopWordSet(c.StopWords)
	}
	return textproc.New(opts)
}

// Schema maps field names to their BM25FS⁺ weight and describes the
// tokenizer and optional fixed vector dimension for an Engine.
type Schema struct {
	Fields    map[string]FieldWeight
	Tokenizer TokenizerConfig
	// Dimension, if non-zero, is validated against the first ingested
	// vector instead of being inferred from it.
	Dimension int
}

// NewSchema returns a Schema with default tokenizer settings and no
// field overrides.
func NewSchema() Schema {
	return Schema{
		Fields:    make(map[string]FieldWeight),
		Tokenizer: DefaultTokenizerConfig(),
	}
}

// WithField overrides a field's weight/b.
func (s Schema) WithField(name string, fw FieldWeight) Schema {
	s.Fields[name] = fw
	return s
}

func (s Schema) fieldWeights() map[string]bm25f.FieldWeight {
	out := make(map[string]bm25f.FieldWeight, len(s.Fields))
	for name, fw := range s.Fields {
		out[name] = fw.toBM25F()
	}
	return out
}

// DocumentID identifies a document across Add/Delete calls.
type DocumentID string

// Document is one ingestable unit: text attributes keyed by field
// name (each an ordered sequence of text values) plus an optional
// dense vector.
type Document struct {
	ID         DocumentID
	Attributes map[string][]string
	Vector     []float32
}

