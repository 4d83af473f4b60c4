package lexical

import "github.com/lumensearch/hybrid/internal/entryid"

// EntryIndex is an alias for the engine-wide row identifier.
type EntryIndex = entryid.Index

// Posting holds one (term, field, doc) occurrence: the ordered token
// positions of term within that field of that document.
type Posting struct {
	Positions []int
}

// Scored is one scored result from a lexical query.
type Scored struct {
	Entry EntryIndex
	Score float64
}
