// Package corpus persists documents to SQLite so a hybridctl process
// can reload its index across restarts. hybrid.Engine itself is
// purely in-memory; Store is the durable record it is rehydrated from.
package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure Go driver, no CGO

	"github.com/lumensearch/hybrid"
)

// Record is a document as stored on disk: attributes plus an optional
// vector, both serialized as JSON.
type Record struct {
	ID         string
	Attributes map[string][]string
	Vector     []float32
}

// Store is a SQLite-backed document store. A single Store is meant to
// back one corpus database and is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed bool
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures its schema exists. WAL mode allows a reader process (e.g. a
// "hybridctl search" invocation) to run concurrently with a writer.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("corpus: path must not be empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("corpus: create directory: %w", err)
		}
	}

	dsn := path
	if path != ":memory:" {
		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("corpus: open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("corpus: set pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);
	CREATE TABLE IF NOT EXISTS documents (
		doc_id     TEXT PRIMARY KEY,
		attributes TEXT NOT NULL,
		vector     TEXT,
		updated_at INTEGER NOT NULL
	);
	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Put upserts a single document record. updatedAtUnix is supplied by
// the caller; Store never reads the clock itself (Persister passes
// time.Now).
func (s *Store) Put(ctx context.Context, rec Record, updatedAtUnix int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("corpus: store is closed")
	}

	attrJSON, err := json.Marshal(rec.Attributes)
	if err != nil {
		return fmt.Errorf("corpus: marshal attributes: %w", err)
	}
	var vecJSON []byte
	if rec.Vector != nil {
		vecJSON, err = json.Marshal(rec.Vector)
		if err != nil {
			return fmt.Errorf("corpus: marshal vector: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (doc_id, attributes, vector, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(doc_id) DO UPDATE SET
			attributes = excluded.attributes,
			vector = excluded.vector,
			updated_at = excluded.updated_at
	`, rec.ID, string(attrJSON), nullableString(vecJSON), updatedAtUnix)
	if err != nil {
		return fmt.Errorf("corpus: put document %s: %w", rec.ID, err)
	}
	return nil
}

// Delete removes a document record. It is not an error to delete an
// ID that does not exist.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("corpus: store is closed")
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE doc_id = ?`, id)
	if err != nil {
		return fmt.Errorf("corpus: delete document %s: %w", id, err)
	}
	return nil
}

// All loads every document record, ordered by doc_id for deterministic
// replay into a fresh hybrid.Engine.
func (s *Store) All(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("corpus: store is closed")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT doc_id, attributes, vector FROM documents ORDER BY doc_id`)
	if err != nil {
		return nil, fmt.Errorf("corpus: list documents: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var id, attrJSON string
		var vecJSON sql.NullString
		if err := rows.Scan(&id, &attrJSON, &vecJSON); err != nil {
			return nil, fmt.Errorf("corpus: scan document: %w", err)
		}
		rec := Record{ID: id}
		if err := json.Unmarshal([]byte(attrJSON), &rec.Attributes); err != nil {
			return nil, fmt.Errorf("corpus: unmarshal attributes for %s: %w", id, err)
		}
		if vecJSON.Valid {
			if err := json.Unmarshal([]byte(vecJSON.String), &rec.Vector); err != nil {
				return nil, fmt.Errorf("corpus: unmarshal vector for %s: %w", id, err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count returns the number of stored document records.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, fmt.Errorf("corpus: store is closed")
	}
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	return n, err
}

// Hydrate loads every record from the store and adds it to engine. A
// record whose vector no longer matches the engine's established
// dimension is skipped rather than aborting the whole load, since the
// corpus may span documents indexed under different embedding models
// over the store's lifetime.
func Hydrate(ctx context.Context, s *Store, engine *hybrid.Engine) (loaded, skipped int, err error) {
	records, err := s.All(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, rec := range records {
		doc := hybrid.Document{ID: hybrid.DocumentID(rec.ID), Attributes: rec.Attributes, Vector: rec.Vector}
		if addErr := engine.Add(doc); addErr != nil {
			var vecErr *hybrid.VectorError
			if errors.As(addErr, &vecErr) {
				skipped++
				continue
			}
			return loaded, skipped, fmt.Errorf("corpus: hydrate document %s: %w", rec.ID, addErr)
		}
		loaded++
	}
	return loaded, skipped, nil
}

func nullableString(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}
