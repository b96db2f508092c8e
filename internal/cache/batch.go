package cache

import (
	"encoding/json"
	"sync"
	"time"
)

// Store is the read/write contract shared by ResultCache and Batch.
type Store interface {
	Get(fingerprint string) (json.RawMessage, bool)
	Put(fingerprint string, value json.RawMessage, ttl time.Duration) bool
}

var (
	_ Store = (*ResultCache)(nil)
	_ Store = (*Batch)(nil)
)

type pendingPut struct {
	fingerprint string
	value       json.RawMessage
	ttl         time.Duration
}

// Batch collects the cache writes of one pipeline run. Reads go straight to
// the cache; writes stay pending until Commit, so a run that is aborted part
// way never promotes its partial results.
type Batch struct {
	cache *ResultCache

	mu      sync.Mutex
	pending []pendingPut
	closed  bool
}

func (c *ResultCache) NewBatch() *Batch {
	return &Batch{cache: c}
}

func (b *Batch) Get(fingerprint string) (json.RawMessage, bool) {
	return b.cache.Get(fingerprint)
}

// Put stages a write. It reports false once the batch is committed or discarded.
func (b *Batch) Put(fingerprint string, value json.RawMessage, ttl time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	b.pending = append(b.pending, pendingPut{
		fingerprint: fingerprint,
		value:       append(json.RawMessage(nil), value...),
		ttl:         ttl,
	})
	return true
}

// Commit writes every staged entry to the cache and closes the batch.
// It returns how many entries the cache accepted.
func (b *Batch) Commit() int {
	b.mu.Lock()
	pending := b.pending
	b.pending = nil
	b.closed = true
	b.mu.Unlock()

	stored := 0
	for _, p := range pending {
		if b.cache.Put(p.fingerprint, p.value, p.ttl) {
			stored++
		}
	}
	return stored
}

// Discard drops staged writes and closes the batch.
func (b *Batch) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = nil
	b.closed = true
}

// Pending returns the number of staged writes.
func (b *Batch) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
