// Package cache provides a TTL-expiring, size-bounded lookup cache. It sits
// in front of tag, similar-artist, and preview-URL lookups to bound cost
// under the upstream throttles' rate budgets.
//
// Eviction is LRU, optionally priority-aware: entries stored with a priority
// number (1 = most important) are evicted largest-number first, oldest
// insertion among ties. A cache holding no priority metadata degrades to
// plain LRU.
package cache

import (
	"sync"
	"time"
)

// entry is a node in the access-order list. head.next is the least recently
// used end, tail.prev the most recently used.
type entry struct {
	key        string
	value      any
	insertedAt time.Time
	expiresAt  time.Time
	priority   int // 0 means no priority metadata
	prev, next *entry
}

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Hits       int64         `json:"hits"`
	Misses     int64         `json:"misses"`
	Size       int           `json:"size"`
	TTL        time.Duration `json:"ttl"`
	Priorities map[int]int   `json:"priorities"` // entries per priority number
}

// Cache is a thread-safe bounded cache with a fixed per-entry TTL.
type Cache struct {
	mu          sync.Mutex
	maxSize     int
	ttl         time.Duration
	items       map[string]*entry
	head, tail  *entry // access-order sentinels
	prioritized int    // entries carrying priority metadata
	hits        int64
	misses      int64

	// now is the clock; swapped out in tests.
	now func() time.Time
}

// New creates a cache bounded at maxSize entries with a fixed ttl.
// Non-positive parameters fall back to 100 entries and 5 minutes.
func New(maxSize int, ttl time.Duration) *Cache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	c := &Cache{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*entry, maxSize),
		head:    &entry{},
		tail:    &entry{},
		now:     time.Now,
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the live value for key. Expired entries are removed and
// counted as misses; a hit refreshes the entry's access order.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.remove(e)
		c.misses++
		return nil, false
	}
	c.moveToBack(e)
	c.hits++
	return e.value, true
}

// Set stores value under key with no priority metadata, overwriting any
// prior entry.
func (c *Cache) Set(key string, value any) {
	c.set(key, value, 0)
}

// SetWithPriority stores value under key with an eviction priority,
// 1 being the most important. Priorities below 1 are treated as unset.
func (c *Cache) SetWithPriority(key string, value any, priority int) {
	if priority < 1 {
		priority = 0
	}
	c.set(key, value, priority)
}

func (c *Cache) set(key string, value any, priority int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if old, ok := c.items[key]; ok {
		c.remove(old)
	}
	e := &entry{
		key:        key,
		value:      value,
		insertedAt: now,
		expiresAt:  now.Add(c.ttl),
		priority:   priority,
	}
	c.items[key] = e
	c.pushBack(e)
	if priority > 0 {
		c.prioritized++
	}

	if len(c.items) > c.maxSize {
		c.evictOne()
	}
}

// Len returns the current number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats reports hit/miss counts, size, ttl, and a per-priority histogram.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	hist := make(map[int]int)
	for _, e := range c.items {
		hist[e.priority]++
	}
	return Stats{
		Hits:       c.hits,
		Misses:     c.misses,
		Size:       len(c.items),
		TTL:        c.ttl,
		Priorities: hist,
	}
}

// evictOne removes exactly one entry. With priority metadata present, the
// victim is the largest priority number (unset counts as least important),
// oldest insertion among ties; otherwise the least recently used entry.
// Caller holds c.mu.
func (c *Cache) evictOne() {
	if c.prioritized == 0 {
		if oldest := c.head.next; oldest != c.tail {
			c.remove(oldest)
		}
		return
	}

	var victim *entry
	for e := c.head.next; e != c.tail; e = e.next {
		if victim == nil {
			victim = e
			continue
		}
		vp, ep := effectivePriority(victim), effectivePriority(e)
		if ep > vp || (ep == vp && e.insertedAt.Before(victim.insertedAt)) {
			victim = e
		}
	}
	if victim != nil {
		c.remove(victim)
	}
}

// effectivePriority orders unset entries below every numbered priority.
func effectivePriority(e *entry) int {
	if e.priority == 0 {
		return int(^uint(0) >> 1)
	}
	return e.priority
}

// List helpers. Callers hold c.mu.

func (c *Cache) pushBack(e *entry) {
	e.prev = c.tail.prev
	e.next = c.tail
	c.tail.prev.next = e
	c.tail.prev = e
}

func (c *Cache) moveToBack(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.pushBack(e)
}

func (c *Cache) remove(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
	if e.priority > 0 {
		c.prioritized--
	}
}
