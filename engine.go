package hybrid

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lumensearch/hybrid/internal/entryid"
	"github.com/lumensearch/hybrid/internal/flatscan"
	"github.com/lumensearch/hybrid/internal/lexical"
	"github.com/lumensearch/hybrid/internal/vectorindex"
)

// Result is one scored document returned by a public search API.
type Result struct {
	ID    DocumentID
	Score float64
}

// EngineOption configures an Engine at construction time.
type EngineOption func(*Engine)

// WithLogger attaches a structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithRRFConstant overrides the RRF smoothing constant used by
// SearchHybrid's RRF strategy. Defaults to DefaultRRFConstant.
func WithRRFConstant(k int) EngineOption {
	return func(e *Engine) { e.rrfConstant = k }
}

// Engine orchestrates ingest and query across the lexical index, the
// vector index and the flat scan store. Add/Delete take the engine's
// write lock, so concurrent calls are serialized; search methods are
// concurrent-safe against a consistent index state.
type Engine struct {
	mu sync.RWMutex

	schema  Schema
	lexical *lexical.Index
	vector  *vectorindex.Store
	flat    *flatscan.Store
	logger  *slog.Logger

	idToEntry map[DocumentID]entryid.Index
	entryToID map[entryid.Index]DocumentID
	nextEntry entryid.Index

	rrfConstant int
}

// New builds an Engine from schema.
func New(schema Schema, opts ...EngineOption) *Engine {
	e := &Engine{
		schema: schema,
		lexical: lexical.New(lexical.Config{
			Processor:    schema.Tokenizer.toProcessor(),
			FieldWeights: schema.fieldWeights(),
		}),
		vector:      vectorindex.New(),
		flat:        flatscan.New(),
		logger:      slog.Default(),
		idToEntry:   make(map[DocumentID]entryid.Index),
		entryToID:   make(map[entryid.Index]DocumentID),
		rrfConstant: DefaultRRFConstant,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Add ingests doc: assigns the next EntryIndex, indexes every text
// attribute, normalizes and stores the flat scan blob, and — if doc
// carries a vector — indexes it too. Returns ErrDuplicateID if doc.ID
// is already present, or a *VectorError if doc.Vector's dimension
// mismatches the schema's Dimension (when non-zero) or the frozen
// vector dimension (nothing is indexed in that case, so Add is
// all-or-nothing).
func (e *Engine) Add(doc Document) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.idToEntry[doc.ID]; exists {
		return ErrDuplicateID
	}
	if doc.Vector != nil && e.schema.Dimension != 0 && len(doc.Vector) != e.schema.Dimension {
		return &VectorError{DocumentID: doc.ID, Err: &vectorindex.DimensionError{Expected: e.schema.Dimension, Got: len(doc.Vector)}}
	}

	entry := e.nextEntry
	e.lexical.AddDocument(entry, doc.Attributes)
	e.flat.Put(entry, flatscan.Normalize(orderedValues(doc.Attributes)))

	if doc.Vector != nil {
		if err := e.vector.Add(entry, doc.Vector); err != nil {
			e.lexical.Delete(entry)
			e.flat.Delete(entry)
			return &VectorError{DocumentID: doc.ID, Err: err}
		}
	}

	e.nextEntry++
	e.idToEntry[doc.ID] = entry
	e.entryToID[entry] = doc.ID
	e.logger.Debug("document indexed", "id", doc.ID, "entry", entry, "has_vector", doc.Vector != nil)
	return nil
}

// Delete removes doc.ID from every component. Returns ErrNotFound if
// unknown.
func (e *Engine) Delete(id DocumentID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.idToEntry[id]
	if !ok {
		return ErrNotFound
	}

	e.lexical.Delete(entry)
	e.flat.Delete(entry)
	e.vector.Delete(entry)
	delete(e.idToEntry, id)
	delete(e.entryToID, entry)
	e.logger.Debug("document deleted", "id", id, "entry", entry)
	return nil
}

// SearchText delegates to the lexical BM25FS⁺ index.
func (e *Engine) SearchText(q string, topK int) []Result {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.toResults(e.lexical.Query(q, topK))
}

// SearchVector delegates to the flat vector index.
func (e *Engine) SearchVector(query []float32, topK int) ([]Result, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rows, err := e.vector.Query(query, topK)
	if err != nil {
		return nil, &VectorError{Err: err}
	}
	out := make([]Result, 0, len(rows))
	for _, r := range rows {
		if id, ok := e.entryToID[r.Entry]; ok {
			out = append(out, Result{ID: id, Score: float64(r.Score)})
		}
	}
	return out, nil
}

// SearchSubstring delegates to the flat scan store's substring match.
func (e *Engine) SearchSubstring(q string, topK int) []Result {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.toFlatResults(e.flat.SubstringQuery(q, topK))
}

// SearchFuzzy delegates to the flat scan store's bounded-fuzzy match.
// maxEdits is clamped to flatscan.MaxEdits.
func (e *Engine) SearchFuzzy(q string, topK, maxEdits int) []Result {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.toFlatResults(e.flat.FuzzyQuery(q, topK, maxEdits))
}

// SearchHybrid runs the text and vector queries (each widened to 2*k)
// concurrently and fuses them to k results with strategy. alpha is
// only meaningful for WeightedSum. qText == "" or qVector == nil skips
// that side of the fusion.
func (e *Engine) SearchHybrid(qText string, qVector []float32, topK int, strategy FusionStrategy, alpha float64) ([]Result, error) {
	if qText == "" && qVector == nil {
		return nil, nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	widened := topK * 2
	var textScored []lexical.Scored
	var vecScored []vectorindex.Result
	var vecErr error

	g, _ := errgroup.WithContext(context.Background())
	if qText != "" {
		g.Go(func() error {
			textScored = e.lexical.Query(qText, widened)
			return nil
		})
	}
	if qVector != nil {
		g.Go(func() error {
			vecScored, vecErr = e.vector.Query(qVector, widened)
			return nil
		})
	}
	_ = g.Wait()
	if vecErr != nil {
		return nil, &VectorError{Err: vecErr}
	}

	textList := newRankedList(len(textScored))
	for _, s := range textScored {
		textList.add(s.Entry, s.Score)
	}
	vecList := newRankedList(len(vecScored))
	for _, s := range vecScored {
		vecList.add(s.Entry, float64(s.Score))
	}

	fused := fuse(textList, vecList, strategy, alpha, topK, e.rrfConstant)
	out := make([]Result, 0, len(fused))
	for _, f := range fused {
		if id, ok := e.entryToID[f.Entry]; ok {
			out = append(out, Result{ID: id, Score: f.Score})
		}
	}
	return out, nil
}

// Stats summarizes the engine's current size.
type Stats struct {
	DocumentCount   int
	VectorCount     int
	VectorDimension int
}

// Stats returns the engine's current size.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Stats{
		DocumentCount:   len(e.idToEntry),
		VectorCount:     e.vector.Count(),
		VectorDimension: e.vector.Dimension(),
	}
}

func (e *Engine) toResults(scored []lexical.Scored) []Result {
	out := make([]Result, 0, len(scored))
	for _, s := range scored {
		if id, ok := e.entryToID[s.Entry]; ok {
			out = append(out, Result{ID: id, Score: s.Score})
		}
	}
	return out
}

func (e *Engine) toFlatResults(scored []flatscan.Result) []Result {
	out := make([]Result, 0, len(scored))
	for _, s := range scored {
		if id, ok := e.entryToID[s.Entry]; ok {
			out = append(out, Result{ID: id, Score: s.Score})
		}
	}
	return out
}

// orderedValues flattens a field -> values map into a single ordered
// list, sorted by field name for deterministic flat-scan blobs.
func orderedValues(attrs map[string][]string) []string {
	fields := make([]string, 0, len(attrs))
	for f := range attrs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	out := make([]string, 0, len(attrs))
	for _, f := range fields {
		out = append(out, attrs[f]...)
	}
	return out
}
