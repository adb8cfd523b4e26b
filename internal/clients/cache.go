// internal/clients/cache.go
package clients

import (
	"sync"
	"time"
)

// cacheEntry pairs a cached response body with the moment it was
// stored, so staleness is decided at read time.
type cacheEntry struct {
	body     []byte
	storedAt time.Time
}

// TTLCache is a response cache keyed by request fingerprint (method +
// URL). Entries expire after a fixed TTL and can be invalidated
// explicitly when a write is known to have changed the backing data.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewTTLCache creates a cache whose entries are served for at most ttl.
func NewTTLCache(ttl time.Duration) *TTLCache {
	return &TTLCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached body for key if present and fresh.
func (c *TTLCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().Sub(e.storedAt) > c.ttl {
		return nil, false
	}
	return e.body, true
}

// Put stores body under key, restamping any previous entry.
func (c *TTLCache) Put(key string, body []byte) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{body: body, storedAt: c.now()}
	c.mu.Unlock()
}

// Invalidate drops the entry for key, if any.
func (c *TTLCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Purge drops every entry.
func (c *TTLCache) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}
