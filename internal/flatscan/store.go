// Package flatscan implements the substring and bounded-fuzzy search
// store: each document is reduced to one lowercased, alphanumeric,
// single-space-normalised blob, scanned in parallel per query.
package flatscan

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/lumensearch/hybrid/internal/entryid"
)

// MaxEdits is the upper bound a caller-supplied max_edits is clamped
// to for fuzzy queries.
const MaxEdits = 4

// substringBonus is added to the fuzzy doc score when the full
// normalized query appears verbatim in the blob.
const substringBonus = 0.25

// Result is one scored row from a substring or fuzzy query.
type Result struct {
	Entry entryid.Index
	Score float64
}

// Store holds one normalized blob per document.
type Store struct {
	mu      sync.RWMutex
	blobs   map[entryid.Index]string
	entries []entryid.Index
}

// New returns an empty store.
func New() *Store {
	return &Store{blobs: make(map[entryid.Index]string)}
}

// Normalize concatenates fields with a single space, lowercases, keeps
// only alphanumeric runes and whitespace, and collapses whitespace
// runs to a single space.
func Normalize(fields []string) string {
	joined := strings.Join(fields, " ")
	var b strings.Builder
	b.Grow(len(joined))
	lastWasSpace := false
	for _, r := range joined {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(unicode.ToLower(r))
			lastWasSpace = false
		case unicode.IsSpace(r):
			if !lastWasSpace && b.Len() > 0 {
				b.WriteByte(' ')
				lastWasSpace = true
			}
		default:
			// dropped
		}
	}
	return strings.TrimSpace(b.String())
}

// Put stores (or replaces) entry's normalized blob.
func (s *Store) Put(entry entryid.Index, blob string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.blobs[entry]; !exists {
		s.entries = append(s.entries, entry)
	}
	s.blobs[entry] = blob
}

// Delete removes entry's blob.
func (s *Store) Delete(entry entryid.Index) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[entry]; !ok {
		return
	}
	delete(s.blobs, entry)
	for i, e := range s.entries {
		if e == entry {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
}

// SubstringQuery scans every blob in parallel for a verbatim (already
// normalized) match of q, scoring earlier matches slightly higher.
func (s *Store) SubstringQuery(q string, topK int) []Result {
	normQuery := Normalize([]string{q})
	if normQuery == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type hit struct {
		entry entryid.Index
		score float64
		ok    bool
	}
	hits := make([]hit, len(s.entries))

	g, _ := errgroup.WithContext(context.Background())
	for i, entry := range s.entries {
		i, entry := i, entry
		blob := s.blobs[entry]
		g.Go(func() error {
			idx := strings.Index(blob, normQuery)
			if idx < 0 {
				return nil
			}
			hits[i] = hit{entry: entry, score: 1 + 1/(1+float64(idx)), ok: true}
			return nil
		})
	}
	_ = g.Wait()

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		if h.ok {
			results = append(results, Result{Entry: h.entry, Score: h.score})
		}
	}
	return topKResults(results, topK)
}

// FuzzyQuery scores each blob against the whitespace-separated tokens
// of the normalized query, combining substring and bounded-Levenshtein
// matches per token.
func (s *Store) FuzzyQuery(q string, topK, maxEdits int) []Result {
	if maxEdits > MaxEdits {
		maxEdits = MaxEdits
	}
	if maxEdits < 0 {
		maxEdits = 0
	}

	normQuery := Normalize([]string{q})
	queryTokens := strings.Fields(normQuery)
	if len(queryTokens) == 0 {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type hit struct {
		entry entryid.Index
		score float64
		ok    bool
	}
	hits := make([]hit, len(s.entries))

	g, _ := errgroup.WithContext(context.Background())
	for i, entry := range s.entries {
		i, entry := i, entry
		blob := s.blobs[entry]
		g.Go(func() error {
			score, ok := fuzzyScoreBlob(blob, normQuery, queryTokens, maxEdits)
			if ok {
				hits[i] = hit{entry: entry, score: score, ok: true}
			}
			return nil
		})
	}
	_ = g.Wait()

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		if h.ok {
			results = append(results, Result{Entry: h.entry, Score: h.score})
		}
	}
	return topKResults(results, topK)
}

func fuzzyScoreBlob(blob, normQuery string, queryTokens []string, maxEdits int) (float64, bool) {
	blobTokens := strings.Fields(blob)
	total := 0.0
	anyHit := false

	for _, qt := range queryTokens {
		if strings.Contains(blob, qt) {
			total += 1
			anyHit = true
			continue
		}

		qr := []rune(qt)
		best := maxEdits + 1
		bestLen := len(qr)
		for _, bt := range blobTokens {
			if abs(len(bt)-len(qt)) > maxEdits {
				continue
			}
			br := []rune(bt)
			d := boundedLevenshtein(qr, br, maxEdits)
			if d < best {
				best = d
				bestLen = max2(len(qr), len(br))
			}
			if d == 0 {
				break
			}
		}
		if best <= maxEdits {
			if bestLen == 0 {
				bestLen = 1
			}
			score := 1 - float64(best)/float64(bestLen)
			if score < 0 {
				score = 0
			}
			if score > 0 {
				anyHit = true
			}
			total += score
		}
	}

	doc := total / float64(len(queryTokens))
	if strings.Contains(blob, normQuery) {
		doc += substringBonus
		anyHit = true
	}
	return doc, anyHit
}

func topKResults(results []Result, topK int) []Result {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Entry < results[j].Entry
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}
