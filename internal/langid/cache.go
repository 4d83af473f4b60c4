package langid

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio"
)

// LoadCached reads a model from sourcePath, atomically mirrors it into
// cacheDir (so a half-written copy is never observed by a concurrent
// reader), and parses the model from the bytes read from sourcePath.
// sourcePath is read on every call; the cache write is skipped when
// cacheDir's copy is already byte-for-byte identical.
func LoadCached(sourcePath, cacheDir string) (*Model, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("langid: read model %s: %w", sourcePath, err)
	}

	cachePath := filepath.Join(cacheDir, "model.bin")
	if existing, err := os.ReadFile(cachePath); err != nil || !bytes.Equal(existing, data) {
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			return nil, fmt.Errorf("langid: create cache dir %s: %w", cacheDir, err)
		}
		if err := renameio.WriteFile(cachePath, data, 0o644); err != nil {
			return nil, fmt.Errorf("langid: cache model to %s: %w", cachePath, err)
		}
	}

	return Load(bytes.NewReader(data))
}
