package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// In-memory TTL cache for extraction results. One entry per cleaned URL;
// lost on restart, which is fine for a single-node bot — upstream
// providers are the expensive part, not the process lifetime.

var extractCache *memoryCache

// Cache metrics — atomic counters for thread-safe access.
var (
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
)

type memoryCache struct {
	entries         sync.Map // key → *cacheEntry
	count           atomic.Int64
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
}

type cacheEntry struct {
	doc       *Document
	expiresAt time.Time
}

func initCache() {
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	maxEntries := cfg.CacheMaxEntries
	if maxEntries == 0 {
		maxEntries = 500
	}
	interval := cfg.CacheCleanupInterval
	if interval == 0 {
		interval = 5 * time.Minute
	}
	c := &memoryCache{ttl: ttl, maxEntries: maxEntries, cleanupInterval: interval}
	go c.janitor()
	extractCache = c
}

func (c *memoryCache) get(key string) (*Document, bool) {
	v, ok := c.entries.Load(key)
	if !ok {
		cacheMisses.Add(1)
		return nil, false
	}
	entry := v.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.entries.Delete(key)
		c.count.Add(-1)
		cacheMisses.Add(1)
		return nil, false
	}
	cacheHits.Add(1)
	return entry.doc, true
}

func (c *memoryCache) set(key string, doc *Document) {
	if int(c.count.Load()) >= c.maxEntries {
		c.evictExpired()
		if int(c.count.Load()) >= c.maxEntries {
			return // full of live entries; skip rather than evict hot data
		}
	}
	if _, loaded := c.entries.Swap(key, &cacheEntry{doc: doc, expiresAt: time.Now().Add(c.ttl)}); !loaded {
		c.count.Add(1)
	}
}

func (c *memoryCache) evictExpired() {
	now := time.Now()
	c.entries.Range(func(k, v any) bool {
		if now.After(v.(*cacheEntry).expiresAt) {
			c.entries.Delete(k)
			c.count.Add(-1)
		}
		return true
	})
}

func (c *memoryCache) janitor() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()
	for range ticker.C {
		c.evictExpired()
	}
}

// CacheStats returns hit/miss counters.
func CacheStats() (hits, misses int64) {
	return cacheHits.Load(), cacheMisses.Load()
}
