package cache

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestCache(clock *fakeClock) *ResultCache {
	return NewResultCache(CacheConfig{MaxEntries: 16, TTL: time.Hour}, WithClock(clock.Now))
}

func TestFingerprint_StableAndStageScoped(t *testing.T) {
	a, err := Fingerprint("dimension/desirable", map[string]string{"b": "2", "a": "1"})
	require.NoError(t, err)
	b, err := Fingerprint("dimension/desirable", map[string]string{"a": "1", "b": "2"})
	require.NoError(t, err)
	c, err := Fingerprint("dimension/effective", map[string]string{"a": "1", "b": "2"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestFingerprint_RejectsUnencodable(t *testing.T) {
	_, err := Fingerprint("x", map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}

func TestResultCache_HitUntilExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := newTestCache(clock)

	require.True(t, c.Put("fp", json.RawMessage(`{"score":7}`), 0))
	got, ok := c.Get("fp")
	require.True(t, ok)
	assert.JSONEq(t, `{"score":7}`, string(got))

	clock.Advance(59 * time.Minute)
	_, ok = c.Get("fp")
	assert.True(t, ok)

	clock.Advance(time.Minute)
	_, ok = c.Get("fp")
	assert.False(t, ok)

	m := c.Metrics()
	assert.Equal(t, uint64(2), m.Hits)
	assert.Equal(t, uint64(1), m.Misses)
	assert.Equal(t, uint64(1), m.Expired)
}

func TestResultCache_FirstWriterWins(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := newTestCache(clock)

	assert.True(t, c.Put("fp", json.RawMessage(`"first"`), time.Minute))
	assert.False(t, c.Put("fp", json.RawMessage(`"second"`), time.Minute))
	got, _ := c.Get("fp")
	assert.Equal(t, `"first"`, string(got))

	clock.Advance(time.Minute)
	assert.True(t, c.Put("fp", json.RawMessage(`"third"`), time.Minute))
	got, _ = c.Get("fp")
	assert.Equal(t, `"third"`, string(got))
	assert.Equal(t, uint64(1), c.Metrics().Rejected)
}

func TestResultCache_ReturnsCopies(t *testing.T) {
	c := NewResultCache(CacheConfig{})
	src := json.RawMessage(`"abc"`)
	c.Put("fp", src, 0)
	src[1] = 'z'

	got, _ := c.Get("fp")
	got[1] = 'y'
	again, _ := c.Get("fp")
	assert.Equal(t, `"abc"`, string(again))
	assert.Equal(t, DefaultTTL, c.TTL())
}

func TestResultCache_ConcurrentFirstWriterWins(t *testing.T) {
	c := NewResultCache(CacheConfig{})
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if c.Put("shared", json.RawMessage(fmt.Sprintf("%d", i)), 0) {
				mu.Lock()
				winners++
				mu.Unlock()
			}
			c.Get("shared")
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, c.Len())
}

func TestBatch_CommitPromotesDiscardDoesNot(t *testing.T) {
	c := NewResultCache(CacheConfig{})

	aborted := c.NewBatch()
	require.True(t, aborted.Put("a", json.RawMessage(`1`), 0))
	aborted.Discard()
	assert.False(t, aborted.Put("b", json.RawMessage(`2`), 0))
	assert.Equal(t, 0, aborted.Commit())
	_, ok := c.Get("a")
	assert.False(t, ok)

	run := c.NewBatch()
	run.Put("a", json.RawMessage(`1`), 0)
	run.Put("b", json.RawMessage(`2`), 0)
	_, ok = run.Get("a")
	assert.False(t, ok, "staged writes are not visible before commit")
	assert.Equal(t, 2, run.Pending())
	assert.Equal(t, 2, run.Commit())

	got, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, `2`, string(got))
	assert.False(t, run.Put("c", json.RawMessage(`3`), 0))
}
