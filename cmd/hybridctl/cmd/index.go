package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/lumensearch/hybrid"
	"github.com/lumensearch/hybrid/internal/corpus"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// ingestDoc is the on-disk JSON shape accepted by `hybridctl index`:
// one object, or an array of objects, each {"id", "attributes", "vector"}.
type ingestDoc struct {
	ID         string              `json:"id"`
	Attributes map[string][]string `json:"attributes"`
	Vector     []float32           `json:"vector,omitempty"`
}

func newIndexCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "index <path>",
		Short: "Ingest documents from a JSON file or directory into the corpus",
		Long: `Reads one JSON document, an array of documents, or every *.json file in a
directory, and stores each in the corpus, indexing it for "serve-mcp"/"search".
Documents without an id are assigned one with a random UUID.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, configDir, args[0])
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "directory to load .hybridctl.yaml from (default: current directory)")
	return cmd
}

func runIndex(cmd *cobra.Command, configDir, path string) error {
	if configDir == "" {
		configDir = workingDir()
	}

	docs, err := readIngestDocs(path)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}

	ctx := cmd.Context()
	engine, store, cfg, err := openEngine(ctx, configDir)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	defer func() { _ = store.Close() }()

	lock, err := lockCorpus(cfg.Corpus.DBPath)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	persist := corpus.NewPersister(store)
	indexed := 0
	for _, doc := range docs {
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		// Re-indexing a document already present in the corpus (e.g. a
		// "watch" re-scan, or a corrected file re-run through "index")
		// replaces it rather than failing on the duplicate id.
		if err := engine.Delete(hybrid.DocumentID(doc.ID)); err != nil && !errors.Is(err, hybrid.ErrNotFound) {
			return fmt.Errorf("index: document %s: %w", doc.ID, err)
		}
		if err := engine.Add(hybrid.Document{ID: hybrid.DocumentID(doc.ID), Attributes: doc.Attributes, Vector: doc.Vector}); err != nil {
			return fmt.Errorf("index: document %s: %w", doc.ID, err)
		}
		if err := persist.Put(ctx, doc.ID, doc.Attributes, doc.Vector); err != nil {
			return fmt.Errorf("index: persist %s: %w", doc.ID, err)
		}
		indexed++
	}

	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d document(s)\n", indexed)
	return nil
}

// lockCorpus takes an exclusive file lock alongside the corpus database
// for the duration of a bulk load, so a concurrent `index` run on the
// same corpus doesn't interleave writes.
func lockCorpus(dbPath string) (*flock.Flock, error) {
	lock := flock.New(dbPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire corpus lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("corpus %s is locked by another process", dbPath)
	}
	return lock, nil
}

// readIngestDocs loads ingestDoc records from path: a single JSON
// object, a JSON array, or a directory of *.json files (each holding
// either shape).
func readIngestDocs(path string) ([]ingestDoc, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return readIngestFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", path, err)
	}
	var all []ingestDoc
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		docs, err := readIngestFile(filepath.Join(path, entry.Name()))
		if err != nil {
			return nil, err
		}
		all = append(all, docs...)
	}
	return all, nil
}

func readIngestFile(path string) ([]ingestDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var docs []ingestDoc
		if err := jsonAPI.Unmarshal(data, &docs); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return docs, nil
	}

	var doc ingestDoc
	if err := jsonAPI.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return []ingestDoc{doc}, nil
}
