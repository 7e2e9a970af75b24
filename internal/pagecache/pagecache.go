// Package pagecache implements a size-bounded cache keyed by an
// ordered key, with eviction restricted to entries nobody is currently
// holding a handle to. It has no notion of recency: when over budget
// it evicts evictable entries largest-first, smallest key breaking
// ties, until back under budget.
//
// Rust's original relies on Arc strong-count to detect "nobody else
// holds this"; Go has no refcounted pointer, so Cache tracks an
// explicit reference count per entry instead. Get and Insert both
// return a Handle that increments the count; callers must call
// Release when done, mirroring the page-flush-on-drop lifecycle that
// internal/paging makes explicit via Handle.Release.
package pagecache

import (
	"cmp"
	"sort"
	"sync"
	"sync/atomic"
)

// Sized reports a stored value's approximate memory footprint, used to
// enforce the cache's byte budget.
type Sized interface {
	EstimatedBytes() int
}

type entry[V Sized] struct {
	size  int
	refs  int32
	value V
}

// Cache is a size-bounded map from K to V. The zero value is not
// usable; construct with New.
type Cache[K cmp.Ordered, V Sized] struct {
	mu          sync.RWMutex
	items       map[K]*entry[V]
	cachedBytes atomic.Int64
	maxBytes    int
}

// New returns an empty Cache that evicts once its held values' total
// estimated size exceeds maxBytes.
func New[K cmp.Ordered, V Sized](maxBytes int) *Cache[K, V] {
	return &Cache[K, V]{
		items:    make(map[K]*entry[V]),
		maxBytes: maxBytes,
	}
}

// Handle is a live reference to a cached value. The value is not
// eligible for eviction until every outstanding Handle referencing it
// has been Released.
type Handle[V Sized] struct {
	e *entry[V]
}

// Value returns the handle's referenced value.
func (h *Handle[V]) Value() V { return h.e.value }

// Release drops this handle's hold on the value, making it eligible
// for eviction once no other handle remains.
func (h *Handle[V]) Release() { atomic.AddInt32(&h.e.refs, -1) }

// Get returns a handle to the cached value for key, or ok=false if
// absent.
func (c *Cache[K, V]) Get(key K) (*Handle[V], bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	atomic.AddInt32(&e.refs, 1)
	return &Handle[V]{e: e}, true
}

// Insert stores value under key, replacing any existing entry, and
// returns a handle to it. If the cache is now over budget, it evicts
// evictable entries (refcount 1, meaning only this cache holds them)
// until back under budget.
func (c *Cache[K, V]) Insert(key K, value V) *Handle[V] {
	size := value.EstimatedBytes()
	e := &entry[V]{size: size, refs: 2, value: value} // one ref for the cache, one for the returned handle

	c.mu.Lock()
	old, hadOld := c.items[key]
	c.items[key] = e
	c.mu.Unlock()

	if hadOld {
		c.cachedBytes.Add(int64(size - old.size))
	} else {
		c.cachedBytes.Add(int64(size))
	}

	if int(c.cachedBytes.Load()) > c.maxBytes {
		c.evict()
	}

	return &Handle[V]{e: e}
}

type evictionCandidate[K cmp.Ordered] struct {
	key  K
	size int
}

// evict removes evictable entries, largest first (ties broken by
// smallest key), until total cached size is back under budget.
func (c *Cache[K, V]) evict() {
	c.mu.Lock()
	defer c.mu.Unlock()

	candidates := make([]evictionCandidate[K], 0, len(c.items))
	for k, e := range c.items {
		if atomic.LoadInt32(&e.refs) == 1 {
			candidates = append(candidates, evictionCandidate[K]{key: k, size: e.size})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].size != candidates[j].size {
			return candidates[i].size > candidates[j].size
		}
		return candidates[i].key < candidates[j].key
	})

	total := c.cachedBytes.Load()
	for _, cand := range candidates {
		delete(c.items, cand.key)
		c.cachedBytes.Add(-int64(cand.size))
		total -= int64(cand.size)
		if int(total) < c.maxBytes {
			break
		}
	}
}

// EvictAll removes every currently-evictable entry regardless of the
// byte budget. Used to drain the cache on flush/close.
func (c *Cache[K, V]) EvictAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.items {
		if atomic.LoadInt32(&e.refs) == 1 {
			delete(c.items, k)
			c.cachedBytes.Add(-int64(e.size))
		}
	}
}
