package corpus

import (
	"context"
	"time"
)

// Persister adapts a *Store to the mcpserver.Persister interface,
// stamping each write with the current time.
type Persister struct {
	Store *Store
}

// NewPersister wraps store for use as an mcpserver.Persister.
func NewPersister(store *Store) *Persister {
	return &Persister{Store: store}
}

// Put upserts id's attributes and vector, timestamped with the
// current time.
func (p *Persister) Put(ctx context.Context, id string, attributes map[string][]string, vector []float32) error {
	return p.Store.Put(ctx, Record{ID: id, Attributes: attributes, Vector: vector}, time.Now().Unix())
}

// Delete removes id from the store.
func (p *Persister) Delete(ctx context.Context, id string) error {
	return p.Store.Delete(ctx, id)
}
