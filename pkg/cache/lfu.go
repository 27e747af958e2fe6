package cache

import (
	"container/list"
	"fmt"
	"slices"
	"sync"

	"github.com/c360/coworking/errors"
)

// baseFrequency is the frequency of a freshly inserted entry. Insertion counts
// as the first access.
const baseFrequency = 1

// lfuEntry represents an entry in the LFU cache.
type lfuEntry[K comparable, V any] struct {
	key   K
	value V
	freq  int
}

// lfuCache is a thread-safe LFU (Least Frequently Used) cache implementation.
//
// Entries are grouped into one list per access frequency. Inside a list the
// front holds the most recently touched entry, so the back of the lowest
// frequency list is always the eviction victim. Every touch moves an entry to
// the front of the next list, which keeps get, put and remove O(1).
type lfuCache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*list.Element // key -> element inside its frequency list
	buckets  map[int]*list.List  // frequency -> entries, most recent first

	// minFreq never exceeds the lowest populated frequency. Remove may leave it
	// pointing at an empty bucket; evict recomputes it in that case.
	minFreq int

	stats   *Statistics         // ALWAYS initialized
	metrics *cacheMetrics       // Optional, if metrics enabled
	evictFn EvictCallback[K, V] // Optional callback
}

// newLFUCache creates a new LFU cache with the specified capacity.
// Returns an invalid-class error if capacity is not positive.
func newLFUCache[K comparable, V any](capacity int, opts *cacheOptions[K, V]) (*lfuCache[K, V], error) {
	if capacity <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "cache", "newLFUCache",
			fmt.Sprintf("capacity must be positive, got %d", capacity))
	}

	stats, metrics, err := opts.observers("newLFUCache")
	if err != nil {
		return nil, err
	}

	return &lfuCache[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element, capacity),
		buckets:  make(map[int]*list.List),
		stats:    stats,
		metrics:  metrics,
		evictFn:  opts.evictCallback,
	}, nil
}

// Get retrieves a value by key and counts the access.
func (c *lfuCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	element, exists := c.items[key]
	if !exists {
		c.mu.Unlock()
		c.stats.Miss()
		c.metrics.recordMiss()
		var zero V
		return zero, false
	}
	entry := c.touch(element)
	value := entry.value
	c.mu.Unlock()

	c.stats.Hit()
	c.metrics.recordHit()
	return value, true
}

// Put stores a value with the given key. An existing key keeps its entry and
// counts the write as an access; a new key may first evict one entry.
func (c *lfuCache[K, V]) Put(key K, value V) bool {
	c.mu.Lock()
	if element, exists := c.items[key]; exists {
		entry := c.touch(element)
		entry.value = value
		c.mu.Unlock()

		c.stats.Put()
		c.metrics.recordPut()
		return false
	}

	var evicted *lfuEntry[K, V]
	if len(c.items) >= c.capacity {
		evicted = c.evict()
	}

	entry := &lfuEntry[K, V]{key: key, value: value, freq: baseFrequency}
	c.items[key] = c.bucket(baseFrequency).PushFront(entry)
	c.minFreq = baseFrequency
	publishSize(c.stats, c.metrics, len(c.items))
	c.mu.Unlock()

	c.stats.Put()
	c.metrics.recordPut()

	if evicted != nil {
		c.stats.Eviction()
		c.metrics.recordEviction()
		// Call eviction callback outside lock to prevent deadlock
		if c.evictFn != nil {
			c.evictFn(evicted.key, evicted.value)
		}
	}

	return true
}

// Remove deletes an entry by key. It is a no-op for absent keys.
func (c *lfuCache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	element, exists := c.items[key]
	if !exists {
		c.mu.Unlock()
		return false
	}
	c.unlink(element)
	publishSize(c.stats, c.metrics, len(c.items))
	c.mu.Unlock()

	c.stats.Remove()
	c.metrics.recordRemove()
	return true
}

// Clear removes all entries from the cache. Eviction callbacks are not invoked.
func (c *lfuCache[K, V]) Clear() {
	c.mu.Lock()
	c.items = make(map[K]*list.Element, c.capacity)
	c.buckets = make(map[int]*list.List)
	c.minFreq = 0
	publishSize(c.stats, c.metrics, 0)
	c.mu.Unlock()
}

// Size returns the current number of entries in the cache.
func (c *lfuCache[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the maximum number of entries.
func (c *lfuCache[K, V]) Capacity() int {
	return c.capacity
}

// Keys returns all keys ordered from highest to lowest frequency, most
// recently touched first within a frequency. The last key is the next victim.
func (c *lfuCache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	freqs := make([]int, 0, len(c.buckets))
	for freq := range c.buckets {
		freqs = append(freqs, freq)
	}
	slices.Sort(freqs)
	slices.Reverse(freqs)

	keys := make([]K, 0, len(c.items))
	for _, freq := range freqs {
		for element := c.buckets[freq].Front(); element != nil; element = element.Next() {
			keys = append(keys, element.Value.(*lfuEntry[K, V]).key)
		}
	}
	return keys
}

// Stats returns cache statistics.
func (c *lfuCache[K, V]) Stats() *Statistics {
	return c.stats
}

// frequency reports the access count of key without touching it.
func (c *lfuCache[K, V]) frequency(key K) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	element, exists := c.items[key]
	if !exists {
		return 0, false
	}
	return element.Value.(*lfuEntry[K, V]).freq, true
}

// touch increments the entry frequency and moves it to the front of the next
// frequency list. Must be called with mutex held.
func (c *lfuCache[K, V]) touch(element *list.Element) *lfuEntry[K, V] {
	entry := element.Value.(*lfuEntry[K, V])
	if c.detach(element) && c.minFreq == entry.freq {
		c.minFreq = entry.freq + 1
	}
	entry.freq++
	c.items[entry.key] = c.bucket(entry.freq).PushFront(entry)
	return entry
}

// evict removes the least recently touched entry of the lowest frequency.
// Must be called with mutex held and at least one entry present.
func (c *lfuCache[K, V]) evict() *lfuEntry[K, V] {
	bucket, ok := c.buckets[c.minFreq]
	if !ok {
		c.minFreq = c.lowestFrequency()
		bucket = c.buckets[c.minFreq]
	}
	element := bucket.Back()
	entry := element.Value.(*lfuEntry[K, V])
	c.unlink(element)
	return entry
}

// unlink removes an element from both its frequency list and the key index.
// Must be called with mutex held.
func (c *lfuCache[K, V]) unlink(element *list.Element) {
	entry := element.Value.(*lfuEntry[K, V])
	c.detach(element)
	delete(c.items, entry.key)
}

// detach removes an element from its frequency list and drops the list once
// empty. Reports whether the list was dropped. Must be called with mutex held.
func (c *lfuCache[K, V]) detach(element *list.Element) bool {
	freq := element.Value.(*lfuEntry[K, V]).freq
	bucket := c.buckets[freq]
	bucket.Remove(element)
	if bucket.Len() > 0 {
		return false
	}
	delete(c.buckets, freq)
	return true
}

// bucket returns the list for freq, creating it on first use.
func (c *lfuCache[K, V]) bucket(freq int) *list.List {
	bucket, ok := c.buckets[freq]
	if !ok {
		bucket = list.New()
		c.buckets[freq] = bucket
	}
	return bucket
}

// lowestFrequency scans the populated frequencies. Bounded by capacity.
func (c *lfuCache[K, V]) lowestFrequency() int {
	lowest := 0
	for freq := range c.buckets {
		if lowest == 0 || freq < lowest {
			lowest = freq
		}
	}
	return lowest
}
