package cache

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/c360/coworking/errors"
)

// lruEntry represents an entry in the LRU cache.
type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// lruCache is a thread-safe LRU (Least Recently Used) cache implementation.
// It evicts the least recently used item when a new key arrives at capacity.
type lruCache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*list.Element // key -> list element
	order    *list.List          // front is most recently used
	stats    *Statistics         // ALWAYS initialized
	metrics  *cacheMetrics       // Optional, if metrics enabled
	evictFn  EvictCallback[K, V] // Optional callback
}

// newLRUCache creates a new LRU cache with the specified capacity.
func newLRUCache[K comparable, V any](capacity int, opts *cacheOptions[K, V]) (*lruCache[K, V], error) {
	if capacity <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "cache", "newLRUCache",
			fmt.Sprintf("capacity must be positive, got %d", capacity))
	}

	stats, metrics, err := opts.observers("newLRUCache")
	if err != nil {
		return nil, err
	}

	return &lruCache[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
		stats:    stats,
		metrics:  metrics,
		evictFn:  opts.evictCallback,
	}, nil
}

// Get retrieves a value by key and marks it as recently used.
func (c *lruCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	element, exists := c.items[key]
	if !exists {
		c.mu.Unlock()
		c.stats.Miss()
		c.metrics.recordMiss()
		var zero V
		return zero, false
	}
	c.order.MoveToFront(element)
	value := element.Value.(*lruEntry[K, V]).value
	c.mu.Unlock()

	c.stats.Hit()
	c.metrics.recordHit()
	return value, true
}

// Put stores a value with the given key and marks it as recently used.
func (c *lruCache[K, V]) Put(key K, value V) bool {
	c.mu.Lock()
	if element, exists := c.items[key]; exists {
		element.Value.(*lruEntry[K, V]).value = value
		c.order.MoveToFront(element)
		c.mu.Unlock()

		c.stats.Put()
		c.metrics.recordPut()
		return false
	}

	var evicted *lruEntry[K, V]
	if len(c.items) >= c.capacity {
		if back := c.order.Back(); back != nil {
			evicted = back.Value.(*lruEntry[K, V])
			c.removeElementUnsafe(back)
		}
	}

	c.items[key] = c.order.PushFront(&lruEntry[K, V]{key: key, value: value})
	publishSize(c.stats, c.metrics, len(c.items))
	c.mu.Unlock()

	c.stats.Put()
	c.metrics.recordPut()

	if evicted != nil {
		c.stats.Eviction()
		c.metrics.recordEviction()
		if c.evictFn != nil {
			c.evictFn(evicted.key, evicted.value)
		}
	}
	return true
}

// Remove deletes an entry by key.
func (c *lruCache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	element, exists := c.items[key]
	if !exists {
		c.mu.Unlock()
		return false
	}
	c.removeElementUnsafe(element)
	publishSize(c.stats, c.metrics, len(c.items))
	c.mu.Unlock()

	c.stats.Remove()
	c.metrics.recordRemove()
	return true
}

// Clear removes all entries from the cache.
func (c *lruCache[K, V]) Clear() {
	c.mu.Lock()
	c.items = make(map[K]*list.Element, c.capacity)
	c.order.Init()
	publishSize(c.stats, c.metrics, 0)
	c.mu.Unlock()
}

// Size returns the current number of entries in the cache.
func (c *lruCache[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the maximum number of entries.
func (c *lruCache[K, V]) Capacity() int {
	return c.capacity
}

// Keys returns keys in LRU order (most recently used first).
func (c *lruCache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, len(c.items))
	for element := c.order.Front(); element != nil; element = element.Next() {
		keys = append(keys, element.Value.(*lruEntry[K, V]).key)
	}
	return keys
}

// Stats returns cache statistics.
func (c *lruCache[K, V]) Stats() *Statistics {
	return c.stats
}

// removeElementUnsafe removes an element from both the list and map.
// Must be called with mutex held.
func (c *lruCache[K, V]) removeElementUnsafe(element *list.Element) {
	entry := element.Value.(*lruEntry[K, V])
	delete(c.items, entry.key)
	c.order.Remove(element)
}
