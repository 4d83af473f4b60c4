// Package entryid defines the shared row identifier used across every
// component of the engine (lexical postings, vector store, flat scan
// store) so a single document maps to one stable key everywhere.
package entryid

// Index identifies a document's row. It is assigned once, monotonically,
// at ingest time and never reused within the lifetime of an engine.
type Index uint32
