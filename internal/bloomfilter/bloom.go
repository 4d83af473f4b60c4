// Package bloomfilter implements a fixed-size 256-bit Bloom filter used
// as a negative-answer fast path during query planning. It never
// affects correctness: a positive result still requires the caller to
// consult the real postings list.
package bloomfilter

import (
	"hash/fnv"

	"github.com/bits-and-blooms/bitset"
)

// Bits is the fixed filter width in bits.
const Bits = 256

// NumHashes is the number of probe positions per inserted term.
const NumHashes = 3

// Filter is a fixed 256-bit, 3-probe Bloom filter over byte keys.
type Filter struct {
	bits *bitset.BitSet
}

// New returns an empty filter.
func New() *Filter {
	return &Filter{bits: bitset.New(Bits)}
}

// Insert adds term's bytes to the filter.
func (f *Filter) Insert(term []byte) {
	h1, h2 := baseHashes(term)
	for i := uint(0); i < NumHashes; i++ {
		f.bits.Set(probe(h1, h2, i))
	}
}

// Contains reports whether term may be present. false is a guarantee
// of absence; true means "probably present, consult the real index".
func (f *Filter) Contains(term []byte) bool {
	h1, h2 := baseHashes(term)
	for i := uint(0); i < NumHashes; i++ {
		if !f.bits.Test(probe(h1, h2, i)) {
			return false
		}
	}
	return true
}

// Reset clears all bits.
func (f *Filter) Reset() {
	f.bits.ClearAll()
}

// probe implements the Kirsch-Mitzenmacher double-hashing scheme:
// g_i(x) = h1(x) + i*h2(x) mod m, derived from two independent FNV
// variants instead of NumHashes independent hash functions.
func probe(h1, h2 uint64, i uint) uint {
	return uint((h1 + uint64(i)*h2) % Bits)
}

func baseHashes(term []byte) (uint64, uint64) {
	h32 := fnv.New32a()
	h32.Write(term)
	h1 := uint64(h32.Sum32())

	h64 := fnv.New64a()
	h64.Write(term)
	h2 := h64.Sum64()

	return h1, h2
}
