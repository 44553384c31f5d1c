package search

import (
	"sync"
	"time"

	"github.com/parchmentlabs/questmatch/internal/models"
)

// DefaultCacheTTL is how long a ranked hit list stays servable.
const DefaultCacheTTL = 30 * time.Second

type cacheEntry struct {
	hits      []models.SearchHit
	expiresAt time.Time
}

// MemoryCache is a TTL-bounded in-process result cache. It is constructed
// and injected explicitly rather than living as package state, so
// concurrent rankers stay independent.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (c *MemoryCache) Get(key string) ([]models.SearchHit, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.hits, true
}

func (c *MemoryCache) Set(key string, hits []models.SearchHit) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Sweep expired entries opportunistically; the catalog is small so the
	// map never grows past a handful of live queries.
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}

	c.entries[key] = cacheEntry{hits: hits, expiresAt: now.Add(c.ttl)}
}
