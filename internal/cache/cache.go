package cache

import (
	"sync"
	"time"
)

// Clock returns the current time. Injectable for tests and deterministic
// eviction behavior.
type Clock func() time.Time

type entry struct {
	value     any
	storedAt  time.Time
	expiresAt time.Time
}

// TTLCache is a thread-safe, bounded in-memory cache with per-cache TTL.
// When the cache reaches capacity, expired entries are evicted first; if
// none are expired, the oldest entry is dropped. It holds no background
// goroutines; eviction happens inline on writes.
type TTLCache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	maxEntries int
	ttl        time.Duration
	clock      Clock
}

// New creates a bounded TTL cache. maxEntries must be positive; clock may be
// nil, in which case time.Now is used.
func New(maxEntries int, ttl time.Duration, clock Clock) *TTLCache {
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if clock == nil {
		clock = time.Now
	}
	return &TTLCache{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
	}
}

// Get returns the cached value for key, or false if absent or expired.
func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.clock().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, evicting if the cache is full.
func (c *TTLCache) Set(key string, value any) {
	now := c.clock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked(now)
	}

	c.entries[key] = entry{
		value:     value,
		storedAt:  now,
		expiresAt: now.Add(c.ttl),
	}
}

// Delete removes key from the cache.
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes all entries.
func (c *TTLCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len returns the number of entries, including any not yet evicted expired
// ones.
func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictLocked removes expired entries, falling back to the oldest entry when
// nothing has expired. Must be called with mu held.
func (c *TTLCache) evictLocked(now time.Time) {
	removed := false
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed = true
		}
	}
	if removed {
		return
	}

	var oldestKey string
	var oldestAt time.Time
	first := true
	for key, e := range c.entries {
		if first || e.storedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = e.storedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
