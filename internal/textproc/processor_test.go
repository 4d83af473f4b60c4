package textproc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_SplitsOnWhitespace(t *testing.T) {
	p := New(Options{MinLen: 1, MaxLen: 64})
	toks := p.Process("hello world")

	require.Len(t, toks, 2)
	assert.Equal(t, "hello", toks[0].Surface)
	assert.Equal(t, 0, toks[0].Position)
	assert.Equal(t, "world", toks[1].Surface)
	assert.Equal(t, 1, toks[1].Position)
}

func TestProcess_TrimsNonAlphanumericEdges(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{"parens", "(hello) (world)", []string{"hello", "world"}},
		{"punctuation", "hello, world!", []string{"hello", "world"}},
		{"quotes", `"quoted" text`, []string{"quoted", "text"}},
		{"keeps internal hyphen", "well-known term", []string{"well-known", "term"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(Options{MinLen: 1, MaxLen: 64})
			toks := p.Process(tt.input)
			got := make([]string, len(toks))
			for i, tok := range toks {
				got[i] = tok.Surface
			}
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestProcess_Lowercases(t *testing.T) {
	p := New(Options{MinLen: 1, MaxLen: 64})
	toks := p.Process("HELLO World")
	require.Len(t, toks, 2)
	assert.Equal(t, "hello", toks[0].Surface)
	assert.Equal(t, "world", toks[1].Surface)
}

func TestProcess_FiltersByLength(t *testing.T) {
	p := New(Options{MinLen: 3, MaxLen: 5})
	toks := p.Process("a bb ccc dddd eeeee ffffff")
	got := make([]string, len(toks))
	for i, tok := range toks {
		got[i] = tok.Surface
	}
	assert.Equal(t, []string{"ccc", "dddd", "eeeee"}, got)
}

func TestProcess_FiltersStopWords(t *testing.T) {
	p := New(Options{
		MinLen:    1,
		MaxLen:    64,
		StopWords: BuildStopWordSet([]string{"the", "a"}),
	})
	toks := p.Process("the quick brown fox is a animal")
	got := make([]string, len(toks))
	for i, tok := range toks {
		got[i] = tok.Surface
	}
	assert.Equal(t, []string{"quick", "brown", "fox", "is", "animal"}, got)
}

func TestProcess_PositionsSurviveFiltering(t *testing.T) {
	p := New(Options{
		MinLen:    3,
		MaxLen:    64,
		StopWords: BuildStopWordSet([]string{"a"}),
	})
	toks := p.Process("a cat in the hat")
	require.Len(t, toks, 3)
	assert.Equal(t, 1, toks[0].Position) // cat
	assert.Equal(t, 3, toks[1].Position) // the
	assert.Equal(t, 4, toks[2].Position) // hat
}

func TestProcess_Stemming(t *testing.T) {
	p := New(Options{MinLen: 1, MaxLen: 64, Stem: true})
	toks := p.Process("running runner runs")
	for _, tok := range toks {
		assert.NotEmpty(t, tok.Stem)
		assert.Equal(t, tok.Stem, tok.Key())
	}
	// Porter stemming collapses running/runner/runs toward a shared root.
	assert.Equal(t, toks[0].Stem, toks[2].Stem)
}

func TestProcess_NoStemmingKeyFallsBackToSurface(t *testing.T) {
	p := New(Options{MinLen: 1, MaxLen: 64, Stem: false})
	toks := p.Process("running")
	require.Len(t, toks, 1)
	assert.Empty(t, toks[0].Stem)
	assert.Equal(t, "running", toks[0].Key())
}

func TestProcess_ParallelMatchesSequentialOrdering(t *testing.T) {
	p := New(Options{MinLen: 1, MaxLen: 64})
	text := strings.Repeat("alpha beta gamma delta ", 50) // 200 words, above threshold

	toks := p.Process(text)
	require.Len(t, toks, 200)
	for i, tok := range toks {
		assert.Equal(t, i, tok.Position, "positions must stay monotonic under parallel processing")
	}
}

func TestProcess_EmptyInput(t *testing.T) {
	p := New(DefaultOptions())
	assert.Empty(t, p.Process(""))
	assert.Empty(t, p.Process("   "))
	assert.Empty(t, p.Process("!!! ... ---"))
}
