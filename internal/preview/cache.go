package preview

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// CachedDocument is one rendered map as served to clients.
type CachedDocument struct {
	Body        []byte
	ContentType string
	RenderID    string
}

// RenderCache holds rendered documents keyed by "<dataset fingerprint>/<format>".
// Entries expire after a TTL and the least recently used entry is evicted at
// capacity. Reloading a dataset drops its entries with Invalidate.
type RenderCache struct {
	mu         sync.Mutex
	entries    map[string]*cacheEntry
	order      []string // front=oldest, back=newest
	maxEntries int
	ttl        time.Duration
	bytes      int64
	hits       atomic.Int64
	misses     atomic.Int64
}

type cacheEntry struct {
	doc      CachedDocument
	storedAt time.Time
}

// CacheStats contains cache performance statistics.
type CacheStats struct {
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	Bytes      int64   `json:"bytes"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
}

// NewRenderCache creates a cache with the given capacity and TTL.
func NewRenderCache(maxEntries int, ttl time.Duration) *RenderCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &RenderCache{
		entries:    make(map[string]*cacheEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

// documentKey builds the cache key for one format of one dataset.
func documentKey(fingerprint, format string) string {
	return fingerprint + "/" + format
}

// Get returns the document stored under key if it has not expired.
func (c *RenderCache) Get(key string) (CachedDocument, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if ok && time.Since(entry.storedAt) > c.ttl {
		c.drop(key)
		ok = false
	}
	if !ok {
		c.misses.Add(1)
		return CachedDocument{}, false
	}

	c.touch(key)
	c.hits.Add(1)
	return entry.doc, true
}

// Put stores doc under key, evicting the least recently used entries at capacity.
func (c *RenderCache) Put(key string, doc CachedDocument) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.drop(key)
	}
	for len(c.entries) >= c.maxEntries && len(c.order) > 0 {
		c.drop(c.order[0])
	}

	c.entries[key] = &cacheEntry{doc: doc, storedAt: time.Now()}
	c.order = append(c.order, key)
	c.bytes += int64(len(doc.Body))
}

// Invalidate drops every document rendered from the dataset with the given
// fingerprint, or every entry whose key starts with prefix.
func (c *RenderCache) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var dropped []string
	for _, key := range c.order {
		if strings.HasPrefix(key, prefix) {
			dropped = append(dropped, key)
		}
	}
	for _, key := range dropped {
		c.drop(key)
	}
	return len(dropped)
}

// Stats returns cache performance statistics.
func (c *RenderCache) Stats() CacheStats {
	c.mu.Lock()
	entries, bytes := len(c.entries), c.bytes
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return CacheStats{
		Entries:    entries,
		MaxEntries: c.maxEntries,
		Bytes:      bytes,
		Hits:       hits,
		Misses:     misses,
		HitRate:    hitRate,
	}
}

// drop removes key; the caller holds mu.
func (c *RenderCache) drop(key string) {
	if e, ok := c.entries[key]; ok {
		c.bytes -= int64(len(e.doc.Body))
		delete(c.entries, key)
	}
	c.remove(key)
}

// touch marks key as most recently used; the caller holds mu.
func (c *RenderCache) touch(key string) {
	c.remove(key)
	c.order = append(c.order, key)
}

func (c *RenderCache) remove(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
