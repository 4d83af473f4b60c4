package langid

import "errors"

// Sentinel errors mirroring the model's failure taxonomy: a bad magic
// or truncated header, an unsupported format version, inconsistent
// quantised-matrix dimensions, and prediction over empty input.
var (
	ErrBadHeader          = errors.New("langid: bad header")
	ErrUnsupportedVersion = errors.New("langid: unsupported model version")
	ErrBadDims            = errors.New("langid: inconsistent matrix dimensions")
	ErrEmptyInput         = errors.New("langid: empty input")
	// ErrUnsupported is returned by Load for a model trained with
	// anything other than word_ngrams = 1 (supervised, subwords-only);
	// behaviour for other values is undefined.
	ErrUnsupported = errors.New("langid: unsupported model configuration")
)
