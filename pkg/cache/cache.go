package cache

// Cache represents a generic cache interface that all cache implementations must satisfy.
// The cache is parameterized by key type K and value type V.
type Cache[K comparable, V any] interface {
	// Get retrieves a value by key. Returns the value and true if found, zero value and false otherwise.
	// A hit counts as an access for the eviction policy.
	Get(key K) (V, bool)

	// Put stores a value with the given key, evicting one entry first when the cache is full
	// and the key is new. Returns true if a new entry was created, false if updated.
	Put(key K, value V) bool

	// Remove deletes an entry by key. Returns true if the key existed.
	// Removing an absent key is a no-op.
	Remove(key K) bool

	// Clear removes all entries from the cache.
	Clear()

	// Size returns the current number of entries in the cache.
	Size() int

	// Capacity returns the maximum number of entries the cache holds.
	Capacity() int

	// Keys returns all keys currently in the cache, most valuable first.
	Keys() []K

	// Stats returns cache statistics, nil for a disabled cache.
	Stats() *Statistics
}

// EvictCallback is called when an entry is evicted to make room for a new key.
// It receives the key and value of the evicted entry and runs outside the cache lock.
type EvictCallback[K comparable, V any] func(key K, value V)
