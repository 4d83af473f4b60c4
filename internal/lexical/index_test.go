package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumensearch/hybrid/internal/bm25f"
	"github.com/lumensearch/hybrid/internal/textproc"
)

func newTestIndex() *Index {
	return New(Config{
		Processor: textproc.New(textproc.Options{MinLen: 1, MaxLen: 64, Stem: true}),
		FieldWeights: map[string]bm25f.FieldWeight{
			"title": {Weight: 2.0, B: 0.75},
			"body":  {Weight: 1.0, B: 0.75},
		},
	})
}

func TestIndex_QueryMatchesIngestedTerm(t *testing.T) {
	ix := newTestIndex()
	ix.AddDocument(1, map[string][]string{"body": {"the quick brown fox"}})
	ix.AddDocument(2, map[string][]string{"body": {"lazy dogs sleep all day"}})

	results := ix.Query("fox", 10)
	require.Len(t, results, 1)
	assert.Equal(t, EntryIndex(1), results[0].Entry)
}

func TestIndex_QueryReturnsNoMatchForUnknownTerm(t *testing.T) {
	ix := newTestIndex()
	ix.AddDocument(1, map[string][]string{"body": {"the quick brown fox"}})

	results := ix.Query("zebra", 10)
	assert.Empty(t, results)
}

func TestIndex_HigherFieldWeightScoresHigher(t *testing.T) {
	ix := newTestIndex()
	ix.AddDocument(1, map[string][]string{"title": {"rocket"}})
	ix.AddDocument(2, map[string][]string{"body": {"rocket"}})
	// Unrelated documents keep "rocket" rare enough for a positive IDF,
	// so the weights decide the order rather than the EntryIndex tie-break.
	ix.AddDocument(3, map[string][]string{"body": {"apple"}})
	ix.AddDocument(4, map[string][]string{"body": {"banana"}})
	ix.AddDocument(5, map[string][]string{"body": {"cherry"}})

	results := ix.Query("rocket", 10)
	require.Len(t, results, 2)
	assert.Equal(t, EntryIndex(1), results[0].Entry, "title field has higher weight than body")
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestIndex_DeletedDocumentExcludedFromQuery(t *testing.T) {
	ix := newTestIndex()
	ix.AddDocument(1, map[string][]string{"body": {"rocket ship"}})
	ix.AddDocument(2, map[string][]string{"body": {"rocket launch"}})

	ix.Delete(1)
	results := ix.Query("rocket", 10)
	require.Len(t, results, 1)
	assert.Equal(t, EntryIndex(2), results[0].Entry)
}

func TestIndex_TopKLimitsResults(t *testing.T) {
	ix := newTestIndex()
	for i := EntryIndex(1); i <= 5; i++ {
		ix.AddDocument(i, map[string][]string{"body": {"common term"}})
	}
	results := ix.Query("common", 2)
	assert.Len(t, results, 2)
}

func TestIndex_TieBreaksByAscendingEntryIndex(t *testing.T) {
	ix := newTestIndex()
	ix.AddDocument(3, map[string][]string{"body": {"identical content"}})
	ix.AddDocument(1, map[string][]string{"body": {"identical content"}})
	ix.AddDocument(2, map[string][]string{"body": {"identical content"}})

	results := ix.Query("identical", 10)
	require.Len(t, results, 3)
	assert.Equal(t, EntryIndex(1), results[0].Entry)
	assert.Equal(t, EntryIndex(2), results[1].Entry)
	assert.Equal(t, EntryIndex(3), results[2].Entry)
}

func TestIndex_QueryCacheReturnsStableResult(t *testing.T) {
	ix := newTestIndex()
	ix.AddDocument(1, map[string][]string{"body": {"rocket ship"}})

	first := ix.Query("rocket", 5)
	second := ix.Query("rocket", 5)
	assert.Equal(t, first, second)
}

func TestIndex_MultipleValuesPerFieldAreJoined(t *testing.T) {
	ix := newTestIndex()
	ix.AddDocument(1, map[string][]string{"body": {"first sentence", "second sentence"}})

	results := ix.Query("second", 10)
	require.Len(t, results, 1)
}

func TestIndex_DocCount(t *testing.T) {
	ix := newTestIndex()
	assert.Equal(t, 0, ix.DocCount())
	ix.AddDocument(1, map[string][]string{"body": {"x"}})
	assert.Equal(t, 1, ix.DocCount())
}
