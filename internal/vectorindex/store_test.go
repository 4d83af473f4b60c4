package vectorindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumensearch/hybrid/internal/entryid"
)

func TestStore_FreezesDimensionOnFirstInsert(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(1, []float32{1, 0, 0}))
	assert.Equal(t, 3, s.Dimension())

	err := s.Add(2, []float32{1, 0})
	require.Error(t, err)
	var dimErr *DimensionError
	assert.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 3, dimErr.Expected)
	assert.Equal(t, 2, dimErr.Got)
}

func TestStore_QueryReturnsHighestCosineFirst(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(1, []float32{1, 0, 0}))
	require.NoError(t, s.Add(2, []float32{0, 1, 0}))
	require.NoError(t, s.Add(3, []float32{0.9, 0.1, 0}))

	results, err := s.Query([]float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, entryid.Index(1), results[0].Entry)
	assert.Equal(t, entryid.Index(3), results[1].Entry)
	assert.Equal(t, entryid.Index(2), results[2].Entry)
}

func TestStore_QueryTopKLimitsResults(t *testing.T) {
	s := New()
	for i := entryid.Index(1); i <= 10; i++ {
		require.NoError(t, s.Add(i, []float32{float32(i), 0}))
	}
	results, err := s.Query([]float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestStore_QueryDimensionMismatch(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(1, []float32{1, 0, 0}))

	_, err := s.Query([]float32{1, 0}, 1)
	require.Error(t, err)
}

func TestStore_QueryEmptyStore(t *testing.T) {
	s := New()
	results, err := s.Query([]float32{1, 0}, 1)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_DeleteCompactsAndPreservesOthers(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(1, []float32{1, 0}))
	require.NoError(t, s.Add(2, []float32{0, 1}))
	require.NoError(t, s.Add(3, []float32{0.5, 0.5}))

	s.Delete(1)
	assert.Equal(t, 2, s.Count())

	results, err := s.Query([]float32{0, 1}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotEqual(t, entryid.Index(1), r.Entry)
	}
}

func TestStore_DeleteMissingEntryIsNoOp(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(1, []float32{1, 0}))
	s.Delete(99)
	assert.Equal(t, 1, s.Count())
}

func TestStore_DeleteThenReinsertDifferentDimensionRejected(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(1, []float32{1, 0}))
	s.Delete(1)
	// Dimension stays frozen even after the last row is removed.
	err := s.Add(2, []float32{1, 0, 0})
	require.Error(t, err)
}
