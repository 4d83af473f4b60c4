package hybrid

import (
	"sort"

	"github.com/lumensearch/hybrid/internal/entryid"
)

// FusionStrategy names a way of combining a text result list and a
// vector result list into one ranking.
type FusionStrategy int

const (
	// RRF combines lists by reciprocal rank, ignoring raw scores.
	RRF FusionStrategy = iota
	// CombSUM max-normalises each list then sums.
	CombSUM
	// WeightedSum max-normalises each list then blends by Alpha.
	WeightedSum
)

// DefaultRRFConstant is the RRF smoothing constant (spec §4.J).
const DefaultRRFConstant = 60

// rankedList is one fusion input: entries in descending-score order,
// as already produced by a component query.
type rankedList struct {
	entries []entryid.Index
	scores  []float64
}

func newRankedList(n int) rankedList {
	return rankedList{entries: make([]entryid.Index, 0, n), scores: make([]float64, 0, n)}
}

func (l *rankedList) add(entry entryid.Index, score float64) {
	l.entries = append(l.entries, entry)
	l.scores = append(l.scores, score)
}

// FusedResult is one entry of a fused hybrid ranking.
type FusedResult struct {
	Entry entryid.Index
	Score float64
}

// fuse combines textList and vecList per strategy and returns the
// top-k fused results, descending by score then ascending by
// EntryIndex.
func fuse(textList, vecList rankedList, strategy FusionStrategy, alpha float64, topK int, rrfConstant int) []FusedResult {
	var scores map[entryid.Index]float64
	switch strategy {
	case RRF:
		scores = fuseRRF(rrfConstant, textList, vecList)
	case CombSUM:
		scores = fuseCombSUM(textList, vecList, 1, 1)
	case WeightedSum:
		scores = fuseCombSUM(textList, vecList, 1-alpha, alpha)
	default:
		scores = fuseRRF(rrfConstant, textList, vecList)
	}

	results := make([]FusedResult, 0, len(scores))
	for entry, score := range scores {
		results = append(results, FusedResult{Entry: entry, Score: score})
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
	return results
}

func fuseRRF(rrfConstant int, lists ...rankedList) map[entryid.Index]float64 {
	scores := make(map[entryid.Index]float64)
	for _, l := range lists {
		for rank, entry := range l.entries {
			scores[entry] += 1 / float64(rrfConstant+rank+1)
		}
	}
	return scores
}

// fuseCombSUM max-normalises each list (divides by its own top score)
// then combines with the given per-list weights.
func fuseCombSUM(textList, vecList rankedList, textWeight, vecWeight float64) map[entryid.Index]float64 {
	scores := make(map[entryid.Index]float64)
	addNormalized(scores, textList, textWeight)
	addNormalized(scores, vecList, vecWeight)
	return scores
}

func addNormalized(scores map[entryid.Index]float64, l rankedList, weight float64) {
	if len(l.scores) == 0 {
		return
	}
	top := l.scores[0]
	for i, entry := range l.entries {
		if top == 0 {
			continue
		}
		scores[entry] += weight * (l.scores[i] / top)
	}
}
