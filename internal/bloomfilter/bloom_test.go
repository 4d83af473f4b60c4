package bloomfilter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_ContainsFalseMeansAbsent(t *testing.T) {
	f := New()
	f.Insert([]byte("hello"))

	assert.True(t, f.Contains([]byte("hello")))
	assert.False(t, f.Contains([]byte("absent-term")))
}

func TestFilter_EmptyFilterRejectsEverything(t *testing.T) {
	f := New()
	assert.False(t, f.Contains([]byte("anything")))
}

func TestFilter_NeverFalseNegative(t *testing.T) {
	f := New()
	terms := make([][]byte, 0, 50)
	for i := 0; i < 50; i++ {
		terms = append(terms, []byte(fmt.Sprintf("term-%d", i)))
	}
	for _, term := range terms {
		f.Insert(term)
	}
	for _, term := range terms {
		assert.True(t, f.Contains(term), "inserted term must never test absent")
	}
}

func TestFilter_Reset(t *testing.T) {
	f := New()
	f.Insert([]byte("hello"))
	assert.True(t, f.Contains([]byte("hello")))

	f.Reset()
	assert.False(t, f.Contains([]byte("hello")))
}
