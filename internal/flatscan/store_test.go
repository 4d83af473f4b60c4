package flatscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumensearch/hybrid/internal/entryid"
)

func TestNormalize_LowercasesAndCollapsesWhitespace(t *testing.T) {
	got := Normalize([]string{"Hello,   World!", "Second Field"})
	assert.Equal(t, "hello world second field", got)
}

func TestBoundedLevenshtein_EqualInputsShortCircuit(t *testing.T) {
	assert.Equal(t, 0, boundedLevenshtein([]rune("kitten"), []rune("kitten"), 4))
}

func TestBoundedLevenshtein_ClassicExample(t *testing.T) {
	assert.Equal(t, 3, boundedLevenshtein([]rune("kitten"), []rune("sitting"), 4))
}

func TestBoundedLevenshtein_PrunesBeyondMaxEdits(t *testing.T) {
	d := boundedLevenshtein([]rune("abcdef"), []rune("uvwxyz"), 2)
	assert.Equal(t, 3, d, "distance exceeds max_edits, sentinel max_edits+1 expected")
}

func TestBoundedLevenshtein_LengthDiffExceedsMaxEdits(t *testing.T) {
	d := boundedLevenshtein([]rune("a"), []rune("abcdef"), 2)
	assert.Equal(t, 3, d)
}

func TestStore_SubstringQuery(t *testing.T) {
	s := New()
	s.Put(1, Normalize([]string{"the quick brown fox"}))
	s.Put(2, Normalize([]string{"lazy dogs sleep"}))

	results := s.SubstringQuery("brown fox", 10)
	require.Len(t, results, 1)
	assert.Equal(t, entryid.Index(1), results[0].Entry)
}

func TestStore_SubstringQueryEarlierMatchScoresHigher(t *testing.T) {
	s := New()
	s.Put(1, Normalize([]string{"fox at the start of this document"}))
	s.Put(2, Normalize([]string{"this document has the fox near the end"}))

	results := s.SubstringQuery("fox", 10)
	require.Len(t, results, 2)
	assert.Equal(t, entryid.Index(1), results[0].Entry)
}

func TestStore_FuzzyQueryToleratesTypos(t *testing.T) {
	s := New()
	s.Put(1, Normalize([]string{"rocket launch sequence"}))
	s.Put(2, Normalize([]string{"completely unrelated text"}))

	results := s.FuzzyQuery("rockett lunch", 10, 2)
	require.Len(t, results, 1)
	assert.Equal(t, entryid.Index(1), results[0].Entry)
}

func TestStore_FuzzyQueryClampsMaxEdits(t *testing.T) {
	s := New()
	s.Put(1, Normalize([]string{"hello world"}))

	// max_edits above MaxEdits must be clamped, not rejected.
	results := s.FuzzyQuery("hello", 10, 100)
	require.Len(t, results, 1)
}

func TestStore_FuzzyQueryNoHitsExcludesDoc(t *testing.T) {
	s := New()
	s.Put(1, Normalize([]string{"hello world"}))

	results := s.FuzzyQuery("zzzzzzzzzz", 10, 1)
	assert.Empty(t, results)
}

func TestStore_DeleteRemovesFromQueries(t *testing.T) {
	s := New()
	s.Put(1, Normalize([]string{"rocket ship"}))
	s.Delete(1)

	results := s.SubstringQuery("rocket", 10)
	assert.Empty(t, results)
}
