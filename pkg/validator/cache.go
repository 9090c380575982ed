package validator

import (
	"container/list"
	"sync"
	"time"
)

// resultCache is an LRU cache of validation verdicts with optional TTL
// expiration. Validation is pure — the schema is immutable and diagnostics
// are deterministic for identical input — so caching the verdict is
// observationally transparent. The TTL only limits how long a verdict is
// served; an expired entry is removed when its key is next looked up or when
// LRU eviction reaches it.
type resultCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	entries  map[string]*list.Element
	order    *list.List // front = most recently used

	hits   uint64
	misses uint64
}

type cacheEntry struct {
	key     string
	verdict ValidationError
	addedAt time.Time
}

func newResultCache(capacity int, ttl time.Duration) *resultCache {
	return &resultCache{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (c *resultCache) get(key string) (ValidationError, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	entry := elem.Value.(*cacheEntry)
	if c.ttl > 0 && time.Since(entry.addedAt) > c.ttl {
		c.order.Remove(elem)
		delete(c.entries, key)
		c.misses++
		return nil, false
	}
	c.order.MoveToFront(elem)
	c.hits++
	return entry.verdict, true
}

func (c *resultCache) put(key string, verdict ValidationError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		elem.Value.(*cacheEntry).verdict = verdict
		elem.Value.(*cacheEntry).addedAt = time.Now()
		c.order.MoveToFront(elem)
		return
	}
	for len(c.entries) >= c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
	elem := c.order.PushFront(&cacheEntry{key: key, verdict: verdict, addedAt: time.Now()})
	c.entries[key] = elem
}

// stats returns hit/miss counters for monitoring.
func (c *resultCache) stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
