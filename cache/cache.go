// Package cache memoizes formatted chat replies for a short window so bursts
// of identical queries don't re-hit the catalog.
package cache

import (
	"sync"
	"time"

	"github.com/onnwee/speedbot/telemetry"
)

// DefaultTTL matches how long a formatted reply stays valid.
const DefaultTTL = 60 * time.Second

// DefaultMaxEntries bounds memory under sustained distinct queries.
const DefaultMaxEntries = 512

type entry struct {
	value    string
	storedAt time.Time
}

// Cache is a TTL-bounded string memo. Expiry is checked on read; entries are
// never invalidated before their TTL. When full, the oldest entry is evicted
// to make room. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	entries map[string]entry

	now func() time.Time // test seam
}

// New returns a cache with the given TTL and entry bound. Non-positive
// arguments fall back to the defaults.
func New(ttl time.Duration, maxEntries int) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		ttl:     ttl,
		max:     maxEntries,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached value for key if it exists and has not expired.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		telemetry.Inc(telemetry.CacheMisses)
		return "", false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		telemetry.SetCacheSize(len(c.entries))
		telemetry.Inc(telemetry.CacheMisses)
		return "", false
	}
	telemetry.Inc(telemetry.CacheHits)
	return e.value, true
}

// Put stores value under key, evicting the oldest entry if the cache is full.
// Overwriting an existing key is always allowed; concurrent writers racing on
// the same key both store equally valid values.
func (c *Cache) Put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.max {
		c.evictOldestLocked()
	}
	c.entries[key] = entry{value: value, storedAt: c.now()}
	telemetry.SetCacheSize(len(c.entries))
}

// Len returns the current entry count, expired entries included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for k, e := range c.entries {
		if first || e.storedAt.Before(oldestAt) {
			oldestKey, oldestAt = k, e.storedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
