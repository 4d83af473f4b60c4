package langid

import (
	"encoding/binary"
	"fmt"
	"io"
)

// QMatrix is a product-quantised embedding matrix: each row's dim
// floats are split into nsub sub-blocks, each sub-block replaced by a
// single byte code indexing one of 256 centroids.
type QMatrix struct {
	QNorm bool
	Rows  uint32
	Dim   uint32
	NSub  uint32

	codes     []byte    // rows*nsub
	centroids []float32 // nsub*256*dsub

	normCodes     []byte    // rows, present only if QNorm
	normCentroids []float32 // 256, present only if QNorm
}

func (m *QMatrix) dsub() uint32 { return m.Dim / m.NSub }

// RowInto dequantises row into out, which must have length >= m.Dim.
func (m *QMatrix) RowInto(row uint32, out []float32) {
	dsub := m.dsub()
	for s := uint32(0); s < m.NSub; s++ {
		code := m.codes[row*m.NSub+s]
		off := s*256*dsub + uint32(code)*dsub
		copy(out[s*dsub:(s+1)*dsub], m.centroids[off:off+dsub])
	}
	if m.QNorm {
		norm := m.normCentroids[m.normCodes[row]]
		for i := uint32(0); i < m.Dim; i++ {
			out[i] *= norm
		}
	}
}

// readQMatrix parses the wire format:
//
//	u8 qnorm | u32 rows | u32 dim | u32 nsub
//	rows*nsub code bytes
//	nsub*256*dsub centroid f32s
//	(if qnorm) rows norm-code bytes, 256 norm centroids
func readQMatrix(r io.Reader) (QMatrix, error) {
	var m QMatrix

	var qnorm uint8
	if err := binary.Read(r, binary.LittleEndian, &qnorm); err != nil {
		return m, fmt.Errorf("langid: read qnorm flag: %w", err)
	}
	m.QNorm = qnorm != 0

	for _, dst := range []*uint32{&m.Rows, &m.Dim, &m.NSub} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return m, fmt.Errorf("langid: read qmatrix shape: %w", err)
		}
	}
	if m.NSub == 0 || m.Dim%m.NSub != 0 {
		return m, fmt.Errorf("%w: dim=%d not divisible by nsub=%d", ErrBadDims, m.Dim, m.NSub)
	}
	dsub := m.dsub()

	m.codes = make([]byte, m.Rows*m.NSub)
	if _, err := io.ReadFull(r, m.codes); err != nil {
		return m, fmt.Errorf("langid: read qmatrix codes: %w", err)
	}

	m.centroids = make([]float32, m.NSub*256*dsub)
	if err := binary.Read(r, binary.LittleEndian, m.centroids); err != nil {
		return m, fmt.Errorf("langid: read qmatrix centroids: %w", err)
	}

	if m.QNorm {
		m.normCodes = make([]byte, m.Rows)
		if _, err := io.ReadFull(r, m.normCodes); err != nil {
			return m, fmt.Errorf("langid: read qmatrix norm codes: %w", err)
		}
		m.normCentroids = make([]float32, 256)
		if err := binary.Read(r, binary.LittleEndian, m.normCentroids); err != nil {
			return m, fmt.Errorf("langid: read qmatrix norm centroids: %w", err)
		}
	}

	return m, nil
}
