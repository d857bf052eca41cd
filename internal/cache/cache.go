// Package cache holds the in-memory freshness cache of normalized weather
// snapshots. Entries expire lazily: staleness is checked on read, never
// swept. Expired entries stay readable through GetStale as the last-resort
// fallback when every live source is down.
package cache

import (
	"sync"
	"time"

	"github.com/nunatech/sila/internal/weather"
)

// DefaultTTL is the freshness window applied by Put.
const DefaultTTL = time.Hour

// Entry pairs a snapshot with its creation and expiry timestamps.
type Entry struct {
	Snapshot  *weather.Snapshot
	CreatedAt time.Time
	ExpiresAt time.Time
}

// FreshnessCache is a concurrency-safe map of location key to Entry. Entries
// are independent; per-key replace is atomic under the lock and no cross-key
// coordination is ever needed.
type FreshnessCache struct {
	mu   sync.RWMutex
	data map[string]Entry
	ttl  time.Duration
	now  func() time.Time
}

// Option configures a FreshnessCache.
type Option func(*FreshnessCache)

// WithTTL overrides the default freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(c *FreshnessCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *FreshnessCache) { c.now = now }
}

// New creates an empty cache.
func New(opts ...Option) *FreshnessCache {
	c := &FreshnessCache{
		data: make(map[string]Entry),
		ttl:  DefaultTTL,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Put stores or overwrites the snapshot for a location key.
func (c *FreshnessCache) Put(key string, snap *weather.Snapshot) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = Entry{
		Snapshot:  snap,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
}

// Get returns the snapshot for key if a valid (unexpired) entry exists.
// Expired entries are treated as absent.
func (c *FreshnessCache) Get(key string) (*weather.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.data[key]
	if !ok || !c.now().Before(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Snapshot, true
}

// GetStale returns the snapshot for key regardless of expiry. Last-resort
// reads only; callers should flag the result as served from stale cache.
func (c *FreshnessCache) GetStale(key string) (*weather.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.data[key]
	if !ok {
		return nil, false
	}
	return entry.Snapshot, true
}

// AgeOf returns how long ago the entry for key was created.
func (c *FreshnessCache) AgeOf(key string) (time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.data[key]
	if !ok {
		return 0, false
	}
	return c.now().Sub(entry.CreatedAt), true
}

// IsValid reports whether an unexpired entry exists for key.
func (c *FreshnessCache) IsValid(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Clear removes every entry.
func (c *FreshnessCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]Entry)
}

// Len returns the number of stored entries, expired or not.
func (c *FreshnessCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
