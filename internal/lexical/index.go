// Package lexical implements the inverted postings index and the
// BM25FS⁺ query pipeline: ingest, per-field length tracking, a Bloom
// filter fast path, and an LRU-cached top-k query.
package lexical

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/lumensearch/hybrid/internal/bloomfilter"
	"github.com/lumensearch/hybrid/internal/bm25f"
	"github.com/lumensearch/hybrid/internal/textproc"
)

const lruCapacity = 32

// postingsKey addresses one (term, field) postings bucket.
type postingsKey struct {
	term  string
	field string
}

// Index is the inverted lexical index for one schema's set of text
// fields. Ingest and deletion take the write lock, so they are
// serialized; queries are concurrent-safe against a consistent index
// state.
type Index struct {
	mu sync.RWMutex

	processor    *textproc.Processor
	fieldWeights map[string]bm25f.FieldWeight
	scorer       bm25f.Scorer

	postings map[postingsKey]map[EntryIndex]*Posting
	termDocs map[string]map[EntryIndex]struct{} // for df: distinct docs per term
	fieldLen map[string]map[EntryIndex]float64
	avgLen   map[string]float64
	fieldN   map[string]int // number of docs contributing to avgLen[field]

	tombstones *roaring.Bitmap
	bloom      *bloomfilter.Filter
	cache      *lru.Cache[string, []Scored]

	numDocs int
}

// Config configures a new Index.
type Config struct {
	Processor    *textproc.Processor
	FieldWeights map[string]bm25f.FieldWeight
}

// New builds an empty Index.
func New(cfg Config) *Index {
	cache, err := lru.New[string, []Scored](lruCapacity)
	if err != nil {
		// Only returns an error for a non-positive capacity, which
		// lruCapacity never is.
		panic(fmt.Sprintf("lexical: unexpected lru.New error: %v", err))
	}
	return &Index{
		processor:    cfg.Processor,
		fieldWeights: cfg.FieldWeights,
		scorer:       bm25f.New(),
		postings:     make(map[postingsKey]map[EntryIndex]*Posting),
		termDocs:     make(map[string]map[EntryIndex]struct{}),
		fieldLen:     make(map[string]map[EntryIndex]float64),
		avgLen:       make(map[string]float64),
		fieldN:       make(map[string]int),
		tombstones:   roaring.New(),
		bloom:        bloomfilter.New(),
		cache:        cache,
	}
}

func (ix *Index) fieldWeight(field string) bm25f.FieldWeight {
	if fw, ok := ix.fieldWeights[field]; ok {
		return fw
	}
	return bm25f.DefaultFieldWeight()
}

// AddDocument tokenizes the given field values and updates the
// postings, length tables, document frequency and Bloom filter. It
// holds the index's write lock for the whole update.
func (ix *Index) AddDocument(entry EntryIndex, fields map[string][]string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.numDocs++
	ix.cache.Purge()

	for field, values := range fields {
		joined := joinValues(values)
		tokens := ix.processor.Process(joined)

		fieldLenMap, ok := ix.fieldLen[field]
		if !ok {
			fieldLenMap = make(map[EntryIndex]float64)
			ix.fieldLen[field] = fieldLenMap
		}
		length := float64(len(tokens))
		fieldLenMap[entry] = length
		ix.fieldN[field]++
		ix.avgLen[field] += (length - ix.avgLen[field]) / float64(ix.fieldN[field])

		for _, tok := range tokens {
			term := tok.Key()
			key := postingsKey{term: term, field: field}
			bucket, ok := ix.postings[key]
			if !ok {
				bucket = make(map[EntryIndex]*Posting)
				ix.postings[key] = bucket
			}
			p, ok := bucket[entry]
			if !ok {
				p = &Posting{}
				bucket[entry] = p
			}
			p.Positions = append(p.Positions, tok.Position)

			docs, ok := ix.termDocs[term]
			if !ok {
				docs = make(map[EntryIndex]struct{})
				ix.termDocs[term] = docs
			}
			if _, seen := docs[entry]; !seen {
				docs[entry] = struct{}{}
				ix.bloom.Insert([]byte(term))
			}
		}
	}
}

// Delete tombstones entry's postings, left in place and filtered at
// query time since there is no background compaction, and immediately
// purges its contribution to the per-field length tables and the
// per-term document sets so avgLen, numDocs and df keep reflecting only
// live documents.
func (ix *Index) Delete(entry EntryIndex) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.tombstones.Contains(uint32(entry)) {
		return
	}
	ix.tombstones.Add(uint32(entry))
	ix.cache.Purge()

	for field, fieldLenMap := range ix.fieldLen {
		length, ok := fieldLenMap[entry]
		if !ok {
			continue
		}
		delete(fieldLenMap, entry)

		n := ix.fieldN[field]
		if n <= 1 {
			ix.fieldN[field] = 0
			ix.avgLen[field] = 0
			continue
		}
		sum := ix.avgLen[field] * float64(n)
		ix.fieldN[field] = n - 1
		ix.avgLen[field] = (sum - length) / float64(n-1)
	}

	for _, docs := range ix.termDocs {
		delete(docs, entry)
	}

	ix.numDocs--
}

func joinValues(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	default:
		total := 0
		for _, v := range values {
			total += len(v) + 1
		}
		buf := make([]byte, 0, total)
		for i, v := range values {
			if i > 0 {
				buf = append(buf, ' ')
			}
			buf = append(buf, v...)
		}
		return string(buf)
	}
}

// Query runs the BM25FS⁺ pipeline for q and returns the top-k scored
// documents, descending by score then ascending by EntryIndex.
func (ix *Index) Query(q string, topK int) []Scored {
	cacheKey := fmt.Sprintf("%s:%d", q, topK)

	ix.mu.RLock()
	if cached, ok := ix.cache.Get(cacheKey); ok {
		ix.mu.RUnlock()
		return cached
	}
	ix.mu.RUnlock()

	terms := ix.queryTerms(q)
	if len(terms) == 0 {
		return nil
	}

	ix.mu.RLock()
	scores := ix.accumulate(terms)
	ix.mu.RUnlock()

	result := topK_(scores, topK)

	ix.mu.Lock()
	ix.cache.Add(cacheKey, result)
	ix.mu.Unlock()

	return result
}

func (ix *Index) queryTerms(q string) []string {
	tokens := ix.processor.Process(q)
	seen := make(map[string]struct{}, len(tokens))
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		key := tok.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		terms = append(terms, key)
	}
	sort.Strings(terms)
	return terms
}

// accumulate fans term scoring out across goroutines (one per query
// term), each building a private partial-sum map, then merges them
// under the caller's lock. Must be called with ix.mu held for reading.
func (ix *Index) accumulate(terms []string) map[EntryIndex]float64 {
	partials := make([]map[EntryIndex]float64, len(terms))

	g, _ := errgroup.WithContext(context.Background())
	for i, term := range terms {
		i, term := i, term
		g.Go(func() error {
			partials[i] = ix.scoreTerm(term)
			return nil
		})
	}
	_ = g.Wait()

	merged := make(map[EntryIndex]float64)
	for _, partial := range partials {
		for entry, score := range partial {
			merged[entry] += score
		}
	}
	return merged
}

func (ix *Index) scoreTerm(term string) map[EntryIndex]float64 {
	out := make(map[EntryIndex]float64)
	if !ix.bloom.Contains([]byte(term)) {
		return out
	}
	df := len(ix.termDocs[term])
	if df == 0 {
		return out
	}
	idf := ix.scorer.IDF(ix.numDocs, df)

	for field, fieldLenMap := range ix.fieldLen {
		bucket, ok := ix.postings[postingsKey{term: term, field: field}]
		if !ok {
			continue
		}
		fw := ix.fieldWeight(field)
		avgLen := ix.avgLen[field]
		for entry, posting := range bucket {
			if ix.tombstones.Contains(uint32(entry)) {
				continue
			}
			tf := float64(len(posting.Positions))
			fieldLen := fieldLenMap[entry]
			impact := ix.scorer.Impact(fw, idf, tf, fieldLen, avgLen)
			out[entry] += impact
		}
	}
	return out
}

func topK_(scores map[EntryIndex]float64, k int) []Scored {
	result := make([]Scored, 0, len(scores))
	for entry, score := range scores {
		result = append(result, Scored{Entry: entry, Score: score})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].Entry < result[j].Entry
	})
	if k > 0 && len(result) > k {
		result = result[:k]
	}
	return result
}

// DocCount returns the number of live (not deleted) documents.
func (ix *Index) DocCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.numDocs
}
