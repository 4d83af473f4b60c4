package corpus

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumensearch/hybrid"
)

func TestOpen_RejectsEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestStore_PutThenAll(t *testing.T) {
	// Given: a fresh store backed by a temp file
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "corpus.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	// When: two documents are put, one with a vector
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, Record{ID: "doc-1", Attributes: map[string][]string{"title": {"a"}}}, 1))
	require.NoError(t, s.Put(ctx, Record{ID: "doc-2", Attributes: map[string][]string{"title": {"b"}}, Vector: []float32{1, 2, 3}}, 2))

	// Then: All returns both, ordered by id, with the vector round-tripped
	records, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "doc-1", records[0].ID)
	assert.Nil(t, records[0].Vector)
	assert.Equal(t, "doc-2", records[1].ID)
	assert.Equal(t, []float32{1, 2, 3}, records[1].Vector)
}

func TestStore_PutUpsertsExistingID(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "corpus.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, Record{ID: "doc-1", Attributes: map[string][]string{"title": {"first"}}}, 1))
	require.NoError(t, s.Put(ctx, Record{ID: "doc-1", Attributes: map[string][]string{"title": {"second"}}}, 2))

	records, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"second"}, records[0].Attributes["title"])
}

func TestStore_DeleteRemovesRecord(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "corpus.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, Record{ID: "doc-1", Attributes: map[string][]string{"title": {"a"}}}, 1))
	require.NoError(t, s.Delete(ctx, "doc-1"))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStore_DeleteUnknownIDIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "corpus.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	assert.NoError(t, s.Delete(context.Background(), "missing"))
}

func TestStore_ClosedStoreRejectsOperations(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "corpus.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	ctx := context.Background()
	assert.Error(t, s.Put(ctx, Record{ID: "doc-1"}, 1))
	assert.Error(t, s.Delete(ctx, "doc-1"))
	_, err = s.All(ctx)
	assert.Error(t, err)
}

func TestHydrate_LoadsRecordsIntoEngine(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "corpus.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, Record{ID: "doc-1", Attributes: map[string][]string{"title": {"hybrid search"}}, Vector: []float32{1, 0}}, 1))
	require.NoError(t, s.Put(ctx, Record{ID: "doc-2", Attributes: map[string][]string{"title": {"vector index"}}, Vector: []float32{0, 1}}, 2))

	engine := hybrid.New(hybrid.NewSchema().WithField("title", hybrid.FieldWeight{Weight: 1, B: 0.75}))
	loaded, skipped, err := Hydrate(ctx, s, engine)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, 2, engine.Stats().DocumentCount)
}

func TestPersister_PutThenDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "corpus.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	p := NewPersister(s)
	ctx := context.Background()
	require.NoError(t, p.Put(ctx, "doc-1", map[string][]string{"title": {"a"}}, []float32{1, 2}))

	records, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []float32{1, 2}, records[0].Vector)

	require.NoError(t, p.Delete(ctx, "doc-1"))
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestHydrate_SkipsDimensionMismatchedVector(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "corpus.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, Record{ID: "doc-1", Attributes: map[string][]string{"title": {"a"}}, Vector: []float32{1, 0}}, 1))
	require.NoError(t, s.Put(ctx, Record{ID: "doc-2", Attributes: map[string][]string{"title": {"b"}}, Vector: []float32{1, 0, 0}}, 2))

	engine := hybrid.New(hybrid.NewSchema().WithField("title", hybrid.FieldWeight{Weight: 1, B: 0.75}))
	loaded, skipped, err := Hydrate(ctx, s, engine)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded)
	assert.Equal(t, 1, skipped)
}
