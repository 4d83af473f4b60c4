// Package langid implements a quantised fastText-compatible language
// identification model: binary model loading, QMatrix dequantisation,
// subword hashing and softmax prediction.
package langid

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"io"
	"strings"

	"github.com/chewxy/math32"
)

// Magic and Version identify the on-disk model format.
const (
	Magic   uint32 = 0x12FD21E5
	Version uint32 = 12
)

// Args holds the fastText training hyperparameters embedded in the
// model header; only Dim, Bucket, Minn and Maxn are used at inference
// time, the rest are carried for fidelity with the file format.
type Args struct {
	Dim          uint32
	WS           uint32
	Epoch        uint32
	MinCount     uint32
	Neg          uint32
	WordNgrams   uint32
	Loss         uint32
	Model        uint32
	Bucket       uint32
	Minn         uint32
	Maxn         uint32
	LRUpdateRate uint32
	T            float64
}

func readArgs(r io.Reader) (Args, error) {
	var a Args
	fields := []*uint32{
		&a.Dim, &a.WS, &a.Epoch, &a.MinCount, &a.Neg, &a.WordNgrams, &a.Loss,
		&a.Model, &a.Bucket,
		&a.Minn, &a.Maxn, &a.LRUpdateRate,
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return a, fmt.Errorf("langid: read args: %w", err)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &a.T); err != nil {
		return a, fmt.Errorf("langid: read args.t: %w", err)
	}
	return a, nil
}

// Model is a loaded, ready-to-predict language identification model.
type Model struct {
	Args   Args
	Labels []string
	NWords uint32

	qinput QMatrix
	wOut   [][]float32 // len(Labels) rows, each Args.Dim wide
}

// Load parses a little-endian fastText-compatible quantised model.
func Load(r io.Reader) (*Model, error) {
	var magic, version uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("langid: read magic: %w", err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("%w: magic 0x%08X", ErrBadHeader, magic)
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("langid: read version: %w", err)
	}
	if version != Version {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, version, Version)
	}

	args, err := readArgs(r)
	if err != nil {
		return nil, err
	}
	if args.WordNgrams != 1 {
		return nil, fmt.Errorf("%w: word_ngrams=%d (only 1, supervised subwords-only, is supported)", ErrUnsupported, args.WordNgrams)
	}

	var nwords, nlabels uint32
	var ntokens uint64
	if err := binary.Read(r, binary.LittleEndian, &nwords); err != nil {
		return nil, fmt.Errorf("langid: read nwords: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &nlabels); err != nil {
		return nil, fmt.Errorf("langid: read nlabels: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &ntokens); err != nil {
		return nil, fmt.Errorf("langid: read ntokens: %w", err)
	}

	for i := uint32(0); i < nwords; i++ {
		if err := skipDictEntry(r); err != nil {
			return nil, fmt.Errorf("langid: skip word %d: %w", i, err)
		}
	}

	labels := make([]string, nlabels)
	for i := uint32(0); i < nlabels; i++ {
		label, err := readDictEntry(r)
		if err != nil {
			return nil, fmt.Errorf("langid: read label %d: %w", i, err)
		}
		labels[i] = CleanLabel(label)
	}

	qinput, err := readQMatrix(r)
	if err != nil {
		return nil, err
	}
	if qinput.Dim != args.Dim {
		return nil, fmt.Errorf("%w: qinput dim=%d args dim=%d", ErrBadDims, qinput.Dim, args.Dim)
	}

	qoutput, err := readQMatrix(r)
	if err != nil {
		return nil, err
	}
	if qoutput.Dim != args.Dim {
		return nil, fmt.Errorf("%w: qoutput dim=%d args dim=%d", ErrBadDims, qoutput.Dim, args.Dim)
	}
	if qoutput.Rows != nlabels {
		return nil, fmt.Errorf("%w: qoutput rows=%d nlabels=%d", ErrBadDims, qoutput.Rows, nlabels)
	}

	wOut := make([][]float32, nlabels)
	for i := uint32(0); i < nlabels; i++ {
		row := make([]float32, args.Dim)
		qoutput.RowInto(i, row)
		wOut[i] = row
	}

	return &Model{
		Args:   args,
		Labels: labels,
		NWords: nwords,
		qinput: qinput,
		wOut:   wOut,
	}, nil
}

func skipDictEntry(r io.Reader) error {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return err
	}
	if _, err := io.CopyN(io.Discard, r, int64(length)); err != nil {
		return err
	}
	var count uint64
	return binary.Read(r, binary.LittleEndian, &count)
}

func readDictEntry(r io.Reader) (string, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	var count uint64
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return "", err
	}
	return string(buf), nil
}

// hashNgram computes the 32-bit FNV-1a hash of ngram: initial
// 2166136261, prime 16777619, h = (h ^ byte) * prime with wraparound.
// hash/fnv implements the identical algorithm; kept as a thin wrapper
// so the formula stays traceable to the spec.
func hashNgram(ngram []byte) uint32 {
	h := fnv.New32a()
	h.Write(ngram)
	return h.Sum32()
}

// SentenceVector builds the mean subword-embedding vector for text:
// each whitespace-separated token is wrapped as <token>, every byte
// n-gram of length minn..min(maxn, len(wrapped)) is hashed into the
// bucketed subword embedding table and accumulated.
func (m *Model) SentenceVector(text string) ([]float32, error) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil, ErrEmptyInput
	}

	dim := m.Args.Dim
	sum := make([]float32, dim)
	temp := make([]float32, dim)
	count := 0

	for _, w := range tokens {
		wrapped := []byte("<" + w + ">")
		maxn := m.Args.Maxn
		if uint32(len(wrapped)) < maxn {
			maxn = uint32(len(wrapped))
		}
		for n := m.Args.Minn; n <= maxn; n++ {
			for start := 0; start+int(n) <= len(wrapped); start++ {
				ngram := wrapped[start : start+int(n)]
				h := hashNgram(ngram) % m.Args.Bucket
				idx := m.NWords + h + 1
				m.qinput.RowInto(idx, temp)
				for i := range sum {
					sum[i] += temp[i]
				}
				count++
			}
		}
	}

	if count == 0 {
		return nil, ErrEmptyInput
	}
	inv := 1 / float32(count)
	for i := range sum {
		sum[i] *= inv
	}
	return sum, nil
}

// Prediction is the top-1 label and its softmax probability.
type Prediction struct {
	Label       string
	Probability float64
}

// Predict classifies text, returning the top-1 label and its softmax
// probability among all labels' scores.
func (m *Model) Predict(text string) (Prediction, error) {
	vec, err := m.SentenceVector(text)
	if err != nil {
		return Prediction{}, err
	}

	scores := make([]float64, len(m.wOut))
	for i, row := range m.wOut {
		var s float64
		for j, v := range row {
			s += float64(v) * float64(vec[j])
		}
		scores[i] = s
	}

	top := 0
	for i, s := range scores {
		if s > scores[top] {
			top = i
		}
	}

	var denom float64
	for _, s := range scores {
		denom += float64(math32.Exp(float32(s - scores[top])))
	}

	return Prediction{Label: m.Labels[top], Probability: 1 / denom}, nil
}
