// Package bm25f implements the BM25FS⁺ per-(term, field, doc) impact
// formula: field-weighted, length-normalized BM25 with an additive
// delta shift.
package bm25f

import "github.com/chewxy/math32"

// Defaults for the scorer's free parameters.
const (
	DefaultK1    = 1.2
	DefaultDelta = 0.5
)

// FieldWeight configures one field's contribution to scoring.
type FieldWeight struct {
	Weight float64
	B      float64
}

// DefaultFieldWeight returns the conventional weight=1, b=0.75 field.
func DefaultFieldWeight() FieldWeight {
	return FieldWeight{Weight: 1.0, B: 0.75}
}

// Scorer holds the free parameters of the impact formula. It is
// stateless: the term/field/doc statistics it scores come from the
// caller (the lexical index owns df, N, len and avglen).
type Scorer struct {
	K1    float64
	Delta float64
}

// New returns a Scorer with the spec's default k1 and delta.
func New() Scorer {
	return Scorer{K1: DefaultK1, Delta: DefaultDelta}
}

// IDF computes max(0, ln((N - df + 0.5) / (df + 0.5))), using the
// float32-native log kernel since term statistics don't need
// float64 precision.
func (s Scorer) IDF(n, df int) float64 {
	ratio := float32((float64(n) - float64(df) + 0.5) / (float64(df) + 0.5))
	v := float64(math32.Log(ratio))
	if v < 0 {
		return 0
	}
	return v
}

// Norm computes 1 - b + b*(fieldLen/avgFieldLen).
func (s Scorer) Norm(fw FieldWeight, fieldLen, avgFieldLen float64) float64 {
	if avgFieldLen == 0 {
		return 1 - fw.B
	}
	return 1 - fw.B + fw.B*(fieldLen/avgFieldLen)
}

// TFFactor computes (k1+1)*tf / (k1*norm + tf).
func (s Scorer) TFFactor(tf float64, norm float64) float64 {
	return (s.K1 + 1) * tf / (s.K1*norm + tf)
}

// Impact computes the per-(term, field, doc) contribution:
// max(0, w_f * idf * tf_factor + delta).
func (s Scorer) Impact(fw FieldWeight, idf, tf, fieldLen, avgFieldLen float64) float64 {
	norm := s.Norm(fw, fieldLen, avgFieldLen)
	tfFactor := s.TFFactor(tf, norm)
	impact := fw.Weight*idf*tfFactor + s.Delta
	if impact < 0 {
		return 0
	}
	return impact
}
