// Package textproc implements the Unicode-agnostic tokenization pipeline
// shared by ingest and query paths: whitespace split, edge trimming,
// lowercasing, length filtering, stop-word filtering and stemming.
package textproc

import (
	"strings"
	"unicode"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
)

// Token is one surface token produced by Process, with its 0-based
// position in the source text and, when stemming is enabled, its stem.
type Token struct {
	Surface  string
	Position int
	Stem     string
}

// Key returns the canonical retrieval key for the token: the stem if
// present, otherwise the surface form.
func (t Token) Key() string {
	if t.Stem != "" {
		return t.Stem
	}
	return t.Surface
}

// parallelThreshold is the word count above which Process splits work
// across goroutines while preserving position order.
const parallelThreshold = 100

// Options configures a Processor.
type Options struct {
	MinLen    int
	MaxLen    int
	StopWords map[string]struct{}
	Stem      bool
}

// DefaultOptions returns the conventional bounds used across the corpus:
// tokens of length 2..24, no stop words, stemming enabled.
func DefaultOptions() Options {
	return Options{
		MinLen: 2,
		MaxLen: 24,
		Stem:   true,
	}
}

// Processor runs the text pipeline described by its Options.
type Processor struct {
	opts Options
}

// New builds a Processor. A zero MaxLen is treated as unbounded.
func New(opts Options) *Processor {
	if opts.MaxLen == 0 {
		opts.MaxLen = 1 << 30
	}
	return &Processor{opts: opts}
}

// Process runs the pipeline over text and returns ordered tokens.
// Positions always reflect the token's index among whitespace-split
// words in the source text, so positions are stable across stop-word
// and length filtering.
func (p *Processor) Process(text string) []Token {
	words := splitWithPositions(text)
	if len(words) > parallelThreshold {
		return p.processParallel(words)
	}
	return p.processSequential(words)
}

type rawWord struct {
	word string
	pos  int
}

func splitWithPositions(text string) []rawWord {
	fields := strings.FieldsFunc(text, unicode.IsSpace)
	words := make([]rawWord, len(fields))
	for i, f := range fields {
		words[i] = rawWord{word: f, pos: i}
	}
	return words
}

func (p *Processor) processSequential(words []rawWord) []Token {
	out := make([]Token, 0, len(words))
	for _, w := range words {
		if tok, ok := p.normalize(w); ok {
			out = append(out, tok)
		}
	}
	return out
}

// processParallel fans the normalize step out across goroutines, one
// per shard over a fixed eight shards, and reassembles results in
// position order.
func (p *Processor) processParallel(words []rawWord) []Token {
	const shards = 8
	n := len(words)
	chunk := (n + shards - 1) / shards

	results := make([][]Token, shards)
	done := make(chan int, shards)
	active := 0
	for s := 0; s < shards; s++ {
		lo := s * chunk
		if lo >= n {
			break
		}
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		active++
		go func(idx, lo, hi int) {
			local := make([]Token, 0, hi-lo)
			for _, w := range words[lo:hi] {
				if tok, ok := p.normalize(w); ok {
					local = append(local, tok)
				}
			}
			results[idx] = local
			done <- idx
		}(s, lo, hi)
	}
	for i := 0; i < active; i++ {
		<-done
	}

	out := make([]Token, 0, n)
	for s := 0; s < shards; s++ {
		out = append(out, results[s]...)
	}
	return out
}

func (p *Processor) normalize(w rawWord) (Token, bool) {
	trimmed := strings.TrimFunc(w.word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if trimmed == "" {
		return Token{}, false
	}
	lower := strings.ToLower(trimmed)

	n := len([]rune(lower))
	if n < p.opts.MinLen || n > p.opts.MaxLen {
		return Token{}, false
	}

	if p.opts.StopWords != nil {
		if _, stop := p.opts.StopWords[lower]; stop {
			return Token{}, false
		}
	}

	tok := Token{Surface: lower, Position: w.pos}
	if p.opts.Stem {
		tok.Stem = porterstemmer.StemString(lower)
	}
	return tok, true
}

// BuildStopWordSet lowercases a word list into a lookup set.
func BuildStopWordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}
