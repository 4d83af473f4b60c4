package vecmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeVec(n int, seed float32) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = float32(i%7)*0.5 + seed
	}
	return v
}

func referenceDot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func TestDotKernels_AgreeWithReferenceAcrossLengths(t *testing.T) {
	lengths := []int{1, 4, 15, 16, 31, 32, 33, 1024}
	kernels := map[string]DotKernel{
		"scalar": DotScalar,
		"dot16":  Dot16,
		"dot32":  Dot32,
	}

	for _, n := range lengths {
		a := makeVec(n, 0.1)
		b := makeVec(n, 0.2)
		want := referenceDot(a, b)

		for name, kernel := range kernels {
			got := kernel(a, b)
			assert.InDelta(t, float64(want), float64(got), 1e-2, "%s mismatch at length %d", name, n)
		}
	}
}

func TestDotKernels_ZeroLength(t *testing.T) {
	assert.Equal(t, float32(0), DotScalar(nil, nil))
	assert.Equal(t, float32(0), Dot16(nil, nil))
	assert.Equal(t, float32(0), Dot32(nil, nil))
}

func TestDotKernels_OrthogonalVectors(t *testing.T) {
	a := []float32{1, 0, 0, 0}
	b := []float32{0, 1, 0, 0}
	assert.Equal(t, float32(0), Dot16(a, b))
}

func TestDotKernels_DeterministicPerVariant(t *testing.T) {
	a := makeVec(1024, 0.37)
	b := makeVec(1024, 0.91)

	first16 := Dot16(a, b)
	second16 := Dot16(a, b)
	assert.Equal(t, first16, second16, "same kernel must be deterministic for the same input")

	first32 := Dot32(a, b)
	second32 := Dot32(a, b)
	assert.Equal(t, first32, second32)
}

func TestDotKernels_VariantsMayDifferByULPs(t *testing.T) {
	a := makeVec(1024, 0.37)
	b := makeVec(1024, 0.91)

	d16 := Dot16(a, b)
	d32 := Dot32(a, b)
	// Different reduction trees: must be close, need not be bit-identical.
	assert.True(t, math.Abs(float64(d16-d32)) < 1.0)
}
