// Package cache implements a bounded in-memory key to bytes cache with a
// per-entry TTL and least-recently-used eviction.
//
// Expired entries are treated as absent and removed when next touched.
// When the cache is full, inserting a new key evicts the least recently
// used entry. All methods are safe for concurrent use.
package cache

import (
	"bytes"
	"container/list"
	"sync"
	"time"

	"photo-gallery/internal/metrics"
)

const (
	// DefaultCapacity is the entry limit used when none is configured.
	DefaultCapacity = 10000
	// DefaultTTL applies to entries stored with Set.
	DefaultTTL = 4 * 24 * time.Hour
)

// Cache is a TTL + LRU cache of encoded image bytes.
type Cache struct {
	mu       sync.Mutex // protects everything below
	capacity int
	ttl      time.Duration
	bytes    int64

	// front of list is MRU, tail is LRU.
	lru   *list.List
	items map[string]*list.Element

	hits      int64
	misses    int64
	evictions int64

	now func() time.Time
}

type entry struct {
	key     string
	value   []byte
	expires time.Time
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Entries   int   `json:"entries"`
	Capacity  int   `json:"capacity"`
	Bytes     int64 `json:"bytes"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// New creates a cache holding at most capacity entries, each living for
// ttl unless stored with SetWithTTL. Non-positive arguments fall back to
// DefaultCapacity and DefaultTTL.
func New(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		capacity: capacity,
		ttl:      ttl,
		lru:      list.New(),
		items:    make(map[string]*list.Element),
		now:      time.Now,
	}
}

// Get returns a copy of the value stored under key and marks it most
// recently used. Expired entries are removed and reported as missing.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}

	e := el.Value.(*entry)
	if !c.now().Before(e.expires) {
		c.removeElement(el)
		c.evictions++
		metrics.ThumbnailCacheEvictions.WithLabelValues("expired").Inc()
		c.misses++
		c.updateGauges()
		return nil, false
	}

	c.lru.MoveToFront(el)
	c.hits++
	return bytes.Clone(e.value), true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value []byte) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a copy of value under key, replacing any existing
// entry, and evicts the least recently used entry if the cache is over
// capacity.
func (c *Cache) SetWithTTL(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	value = bytes.Clone(value)

	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(ttl)

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		c.bytes += int64(len(value) - len(e.value))
		e.value = value
		e.expires = expires
		c.lru.MoveToFront(el)
		c.updateGauges()
		return
	}

	el := c.lru.PushFront(&entry{key: key, value: value, expires: expires})
	c.items[key] = el
	c.bytes += int64(len(value))

	for c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.removeElement(oldest)
		c.evictions++
		metrics.ThumbnailCacheEvictions.WithLabelValues("capacity").Inc()
	}
	c.updateGauges()
}

// Delete removes key if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
		c.updateGauges()
	}
}

// Purge removes every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Init()
	c.items = make(map[string]*list.Element)
	c.bytes = 0
	c.updateGauges()
}

// Len returns the number of stored entries, including any expired ones
// not yet removed.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:   c.lru.Len(),
		Capacity:  c.capacity,
		Bytes:     c.bytes,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// removeElement must be called with mu held.
func (c *Cache) removeElement(el *list.Element) {
	e := c.lru.Remove(el).(*entry)
	delete(c.items, e.key)
	c.bytes -= int64(len(e.value))
}

func (c *Cache) updateGauges() {
	metrics.ThumbnailCacheEntries.Set(float64(c.lru.Len()))
	metrics.ThumbnailCacheBytes.Set(float64(c.bytes))
}
