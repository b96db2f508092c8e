package cache

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultTTL is how long a stage result stays reusable.
const DefaultTTL = time.Hour

type CacheConfig struct {
	MaxEntries int
	TTL        time.Duration
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxEntries: 4096,
		TTL:        DefaultTTL,
	}
}

// Entry is one memoized stage output. Entries are never updated in place.
type Entry struct {
	Fingerprint string
	Value       json.RawMessage
	ExpiresAt   time.Time
}

type MetricsSnapshot struct {
	Hits     uint64
	Misses   uint64
	Puts     uint64
	Rejected uint64
	Expired  uint64
}

type Metrics struct {
	hits     atomic.Uint64
	misses   atomic.Uint64
	puts     atomic.Uint64
	rejected atomic.Uint64
	expired  atomic.Uint64
}

func (m *Metrics) snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Hits:     m.hits.Load(),
		Misses:   m.misses.Load(),
		Puts:     m.puts.Load(),
		Rejected: m.rejected.Load(),
		Expired:  m.expired.Load(),
	}
}

// ResultCache memoizes stage outputs by fingerprint for a fixed TTL. It is
// safe for concurrent use. The first live writer for a fingerprint wins and
// later writers are ignored until that entry expires.
type ResultCache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, Entry]
	ttl     time.Duration
	now     func() time.Time
	metrics Metrics
}

// Option customises a ResultCache.
type Option func(*ResultCache)

// WithClock replaces time.Now, for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(c *ResultCache) { c.now = now }
}

func NewResultCache(cfg CacheConfig, opts ...Option) *ResultCache {
	def := DefaultCacheConfig()
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = def.MaxEntries
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	entries, _ := lru.New[string, Entry](cfg.MaxEntries)
	c := &ResultCache{entries: entries, ttl: cfg.TTL, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// TTL is the expiry applied when Put is called without an explicit ttl.
func (c *ResultCache) TTL() time.Duration { return c.ttl }

// Get returns a copy of the live value stored under fingerprint.
func (c *ResultCache) Get(fingerprint string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries.Get(fingerprint)
	if !ok {
		c.metrics.misses.Add(1)
		return nil, false
	}
	if !c.now().Before(e.ExpiresAt) {
		c.entries.Remove(fingerprint)
		c.metrics.expired.Add(1)
		c.metrics.misses.Add(1)
		return nil, false
	}
	c.metrics.hits.Add(1)
	return append(json.RawMessage(nil), e.Value...), true
}

// Put stores value under fingerprint unless a live entry already exists.
// A non-positive ttl uses the cache default. It reports whether value was stored.
func (c *ResultCache) Put(fingerprint string, value json.RawMessage, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = c.ttl
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if e, ok := c.entries.Peek(fingerprint); ok && now.Before(e.ExpiresAt) {
		c.metrics.rejected.Add(1)
		return false
	}
	c.entries.Add(fingerprint, Entry{
		Fingerprint: fingerprint,
		Value:       append(json.RawMessage(nil), value...),
		ExpiresAt:   now.Add(ttl),
	})
	c.metrics.puts.Add(1)
	return true
}

// Len returns the number of stored entries, expired ones included.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

func (c *ResultCache) Metrics() MetricsSnapshot { return c.metrics.snapshot() }
