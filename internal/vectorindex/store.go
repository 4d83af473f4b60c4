// Package vectorindex implements the flat, brute-force dense-vector
// store: a contiguous row-major f32 buffer scored via the adaptive
// batch dot-product dispatcher. Stored vectors are assumed to already
// be L2-normalised by the caller, so their dot product is cosine
// similarity.
package vectorindex

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lumensearch/hybrid/internal/entryid"
	"github.com/lumensearch/hybrid/internal/vecmath"
)

// DimensionError reports a vector whose length does not match the
// store's frozen dimension.
type DimensionError struct {
	Expected int
	Got      int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("vectorindex: expected dimension %d, got %d", e.Expected, e.Got)
}

// Result is one scored row from a Query.
type Result struct {
	Entry entryid.Index
	Score float32
}

// Store is a flat vector index. Ingest must be serialized by the
// caller; Query is concurrent-safe against a consistent state.
type Store struct {
	mu sync.RWMutex

	dimension int
	frozen    bool

	data    []float32 // row-major, stride = dimension
	entries []entryid.Index
	rowOf   map[entryid.Index]int

	pool *vecmath.BufferPool
}

// New returns an empty store with no dimension frozen yet.
func New() *Store {
	return &Store{
		rowOf: make(map[entryid.Index]int),
		pool:  vecmath.Default(),
	}
}

// Dimension returns the frozen dimension, or 0 if no vector has been
// added yet.
func (s *Store) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

// Add appends vector for entry. The first call freezes the store's
// dimension; subsequent calls with a mismatched length return a
// *DimensionError and leave the store unchanged.
func (s *Store) Add(entry entryid.Index, vector []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.frozen {
		s.dimension = len(vector)
		s.frozen = true
	} else if len(vector) != s.dimension {
		return &DimensionError{Expected: s.dimension, Got: len(vector)}
	}

	row := len(s.entries)
	s.data = append(s.data, vector...)
	s.entries = append(s.entries, entry)
	s.rowOf[entry] = row
	return nil
}

// Delete removes entry's row, compacting the store by moving the last
// row into the freed slot. A no-op if entry is not present.
func (s *Store) Delete(entry entryid.Index) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rowOf[entry]
	if !ok {
		return
	}
	lastRow := len(s.entries) - 1
	if row != lastRow {
		copy(s.data[row*s.dimension:(row+1)*s.dimension], s.data[lastRow*s.dimension:(lastRow+1)*s.dimension])
		movedEntry := s.entries[lastRow]
		s.entries[row] = movedEntry
		s.rowOf[movedEntry] = row
	}
	s.data = s.data[:lastRow*s.dimension]
	s.entries = s.entries[:lastRow]
	delete(s.rowOf, entry)
}

// Count returns the number of rows currently stored.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Query scores query against every stored row via the batch
// dispatcher and returns the top-k results, descending by score then
// ascending by EntryIndex.
func (s *Store) Query(query []float32, topK int) ([]Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return nil, nil
	}
	if len(query) != s.dimension {
		return nil, &DimensionError{Expected: s.dimension, Got: len(query)}
	}

	n := len(s.entries)
	replicated := s.pool.Acquire(n * s.dimension)
	defer s.pool.Release(replicated)
	for i := 0; i < n; i++ {
		copy(replicated[i*s.dimension:(i+1)*s.dimension], query)
	}

	scores := make([]float32, n)
	vecmath.BatchDot(replicated, s.data, scores, s.dimension, n)

	results := make([]Result, n)
	for i := 0; i < n; i++ {
		results[i] = Result{Entry: s.entries[i], Score: scores[i]}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Entry < results[j].Entry
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}
