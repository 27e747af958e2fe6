package cache

import (
	"fmt"
	"sync"
	"testing"
)

// testBasicOperations tests basic cache operations.
func testBasicOperations(t *testing.T, cache Cache[int64, string]) {
	if value, exists := cache.Get(1); exists {
		t.Errorf("Expected cache miss, got value: %s", value)
	}

	if isNew := cache.Put(1, "value1"); !isNew {
		t.Error("Expected new entry creation")
	}

	if value, exists := cache.Get(1); !exists || value != "value1" {
		t.Errorf("Expected 'value1', got value: %s, exists: %t", value, exists)
	}

	if isNew := cache.Put(1, "value1_updated"); isNew {
		t.Error("Expected existing entry update")
	}

	if value, exists := cache.Get(1); !exists || value != "value1_updated" {
		t.Errorf("Expected 'value1_updated', got value: %s, exists: %t", value, exists)
	}

	if removed := cache.Remove(1); !removed {
		t.Error("Expected successful removal")
	}

	if removed := cache.Remove(1); removed {
		t.Error("Expected no-op removal for absent key")
	}

	if value, exists := cache.Get(1); exists {
		t.Errorf("Expected cache miss after removal, got value: %s", value)
	}
}

// testSizeOperations tests cache size tracking.
func testSizeOperations(t *testing.T, cache Cache[int64, string]) {
	if cache.Size() != 0 {
		t.Errorf("Expected size 0, got %d", cache.Size())
	}

	cache.Put(1, "value1")
	cache.Put(2, "value2")

	if cache.Size() != 2 {
		t.Errorf("Expected size 2, got %d", cache.Size())
	}

	cache.Remove(1)

	if cache.Size() != 1 {
		t.Errorf("Expected size 1, got %d", cache.Size())
	}
}

// testKeysOperation tests cache key listing.
func testKeysOperation(t *testing.T, cache Cache[int64, string]) {
	if len(cache.Keys()) != 0 {
		t.Errorf("Expected no keys, got %v", cache.Keys())
	}

	cache.Put(1, "value1")
	cache.Put(2, "value2")

	keys := cache.Keys()
	if len(keys) != 2 {
		t.Errorf("Expected 2 keys, got %d", len(keys))
	}

	keyMap := make(map[int64]bool)
	for _, key := range keys {
		keyMap[key] = true
	}

	if !keyMap[1] || !keyMap[2] {
		t.Errorf("Expected keys 1 and 2, got %v", keys)
	}
}

// testClearOperation tests cache clearing.
func testClearOperation(t *testing.T, cache Cache[int64, string]) {
	cache.Put(1, "value1")
	cache.Put(2, "value2")

	cache.Clear()

	if cache.Size() != 0 {
		t.Errorf("Expected size 0 after clear, got %d", cache.Size())
	}

	if value, exists := cache.Get(1); exists {
		t.Errorf("Expected cache miss after clear, got value: %s", value)
	}

	// The cache must stay usable after Clear
	cache.Put(3, "value3")
	if value, exists := cache.Get(3); !exists || value != "value3" {
		t.Errorf("Expected 'value3' after clear, got value: %s, exists: %t", value, exists)
	}
}

// testCapacityBound checks that the cache never exceeds its capacity.
func testCapacityBound(t *testing.T, cache Cache[int64, string]) {
	capacity := cache.Capacity()
	for i := int64(0); i < int64(capacity*3); i++ {
		cache.Put(i, fmt.Sprintf("value%d", i))
		if cache.Size() > capacity {
			t.Fatalf("Size %d exceeded capacity %d after %d puts", cache.Size(), capacity, i+1)
		}
	}
	if cache.Size() != capacity {
		t.Errorf("Expected full cache of %d, got %d", capacity, cache.Size())
	}
}

// testSuite runs common cache tests across all implementations.
func testSuite(t *testing.T, createCache func() Cache[int64, string]) {
	t.Run("BasicOperations", func(t *testing.T) {
		testBasicOperations(t, createCache())
	})

	t.Run("Size", func(t *testing.T) {
		testSizeOperations(t, createCache())
	})

	t.Run("Keys", func(t *testing.T) {
		testKeysOperation(t, createCache())
	})

	t.Run("Clear", func(t *testing.T) {
		testClearOperation(t, createCache())
	})

	t.Run("CapacityBound", func(t *testing.T) {
		testCapacityBound(t, createCache())
	})
}

func mustCache(create func() (Cache[int64, string], error)) func() Cache[int64, string] {
	return func() Cache[int64, string] {
		cache, err := create()
		if err != nil {
			panic(err)
		}
		return cache
	}
}

// TestLFUCache runs the shared suite against the LFU cache.
func TestLFUCache(t *testing.T) {
	testSuite(t, mustCache(func() (Cache[int64, string], error) {
		return NewLFU[int64, string](10)
	}))
}

// TestLRUCache tests the LRU cache implementation.
func TestLRUCache(t *testing.T) {
	testSuite(t, mustCache(func() (Cache[int64, string], error) {
		return NewLRU[int64, string](10)
	}))

	t.Run("LRUEviction", func(t *testing.T) {
		cache, err := NewLRU[int64, string](3)
		if err != nil {
			t.Fatal(err)
		}

		cache.Put(1, "value1")
		cache.Put(2, "value2")
		cache.Put(3, "value3")

		// Touch key1 so key2 becomes least recently used
		cache.Get(1)
		cache.Put(4, "value4")

		if _, exists := cache.Get(2); exists {
			t.Error("Expected key2 to be evicted")
		}
		for _, key := range []int64{1, 3, 4} {
			if _, exists := cache.Get(key); !exists {
				t.Errorf("Expected key%d to be present", key)
			}
		}
	})
}

// runConcurrentOperations performs concurrent cache operations for testing.
func runConcurrentOperations(t *testing.T, cache Cache[int64, string], numGoroutines, numOperations int) {
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()

			for j := 0; j < numOperations; j++ {
				key := int64(id*numOperations + j)
				value := fmt.Sprintf("value%d-%d", id, j)

				cache.Put(key, value)

				if retrievedValue, exists := cache.Get(key); exists && retrievedValue != value {
					t.Errorf("Expected %s, got %s", value, retrievedValue)
				}

				if size := cache.Size(); size > cache.Capacity() {
					t.Errorf("Size %d exceeded capacity %d", size, cache.Capacity())
				}

				if j%10 == 0 {
					cache.Remove(key)
				}
			}
		}(i)
	}

	wg.Wait()
}

// TestConcurrency tests thread safety of cache implementations.
func TestConcurrency(t *testing.T) {
	lfu, _ := NewLFU[int64, string](100)
	lru, _ := NewLRU[int64, string](100)

	caches := []struct {
		name  string
		cache Cache[int64, string]
	}{
		{"LFU", lfu},
		{"LRU", lru},
	}

	for _, tc := range caches {
		t.Run(tc.name, func(t *testing.T) {
			runConcurrentOperations(t, tc.cache, 10, 200)

			if tc.cache.Size() > tc.cache.Capacity() {
				t.Errorf("Size %d exceeded capacity %d", tc.cache.Size(), tc.cache.Capacity())
			}
			if got := len(tc.cache.Keys()); got != tc.cache.Size() {
				t.Errorf("Keys returned %d entries, size is %d", got, tc.cache.Size())
			}
		})
	}
}

// TestEvictCallback tests the eviction callback functionality.
func TestEvictCallback(t *testing.T) {
	constructors := map[string]func(int, ...Option[int64, string]) (Cache[int64, string], error){
		"LFU": NewLFU[int64, string],
		"LRU": NewLRU[int64, string],
	}

	for name, create := range constructors {
		t.Run(name, func(t *testing.T) {
			var evictedKeys []int64
			var mu sync.Mutex

			cache, err := create(2, WithEvictionCallback[int64, string](func(key int64, _ string) {
				mu.Lock()
				evictedKeys = append(evictedKeys, key)
				mu.Unlock()
			}))
			if err != nil {
				t.Fatal(err)
			}

			cache.Put(1, "value1")
			cache.Put(2, "value2")
			cache.Put(3, "value3") // Should evict key1 under both policies

			// Explicit removal is not an eviction
			cache.Remove(2)

			mu.Lock()
			defer mu.Unlock()
			if len(evictedKeys) != 1 || evictedKeys[0] != 1 {
				t.Errorf("Expected evicted keys [1], got %v", evictedKeys)
			}
		})
	}
}

// TestStatistics tests the statistics functionality.
func TestStatistics(t *testing.T) {
	cache, err := NewLFU[int64, string](2)
	if err != nil {
		t.Fatal(err)
	}

	stats := cache.Stats()
	if stats == nil {
		t.Fatal("Expected stats to be enabled")
	}

	cache.Put(1, "value1")
	cache.Put(2, "value2")
	cache.Get(1)     // hit
	cache.Get(99)    // miss
	cache.Put(3, "") // evicts 2
	cache.Remove(3)
	cache.Remove(3) // absent, not counted

	summary := stats.Summary()
	if summary.Hits != 1 || summary.Misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %d/%d", summary.Hits, summary.Misses)
	}
	if summary.Puts != 3 {
		t.Errorf("Expected 3 puts, got %d", summary.Puts)
	}
	if summary.Removes != 1 {
		t.Errorf("Expected 1 removal, got %d", summary.Removes)
	}
	if summary.Evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", summary.Evictions)
	}
	if summary.CurrentSize != 1 || summary.MaxSize != 2 {
		t.Errorf("Expected size 1 (max 2), got %d (max %d)", summary.CurrentSize, summary.MaxSize)
	}
	if summary.HitRatio != 0.5 {
		t.Errorf("Expected hit ratio 0.5, got %f", summary.HitRatio)
	}

	stats.Reset()
	if stats.Hits() != 0 || stats.Evictions() != 0 || stats.MaxSize() != 0 {
		t.Error("Expected counters to reset")
	}
}
