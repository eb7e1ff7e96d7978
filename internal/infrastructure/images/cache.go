package images

import (
	"context"
	"strconv"
	"sync"

	"ResearchReporter/internal/ports"
)

// MemoryCache is an append-only (topic, index) memo safe for concurrent use.
// The first write for a key wins.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

var _ ports.ImageCache = (*MemoryCache)(nil)

// NewMemoryCache returns an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

func cacheKey(topic string, index int) string {
	return topic + "\x00" + strconv.Itoa(index)
}

// Get returns the memoized URL.
func (c *MemoryCache) Get(topic string, index int) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[cacheKey(topic, index)]
	return v, ok
}

// Put stores url unless the key is already present.
func (c *MemoryCache) Put(topic string, index int, url string) {
	key := cacheKey(topic, index)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	c.entries[key] = url
}

// Len reports the number of memoized entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Source is a resolver that reports failures instead of hiding them behind a
// placeholder. Pexels implements it.
type Source interface {
	Lookup(ctx context.Context, topic string, index int) (string, error)
}

// Cached memoizes successful lookups. Failed lookups yield the placeholder and
// are retried on the next call.
type Cached struct {
	next  Source
	cache ports.ImageCache
}

var _ ports.ImageResolver = (*Cached)(nil)

// NewCached wraps next with cache.
func NewCached(next Source, cache ports.ImageCache) *Cached {
	return &Cached{next: next, cache: cache}
}

// Resolve consults the cache before delegating.
func (c *Cached) Resolve(ctx context.Context, topic string, index int) string {
	if v, ok := c.cache.Get(topic, index); ok {
		return v
	}
	v, err := c.next.Lookup(ctx, topic, index)
	if err != nil {
		return Placeholder(topic)
	}
	c.cache.Put(topic, index, v)
	if stored, ok := c.cache.Get(topic, index); ok {
		return stored
	}
	return v
}
