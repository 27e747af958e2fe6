// Package cache provides bounded, thread-safe in-memory caches with built-in
// statistics and optional Prometheus metrics.
//
// # Overview
//
// Two eviction strategies are available behind the same generic interface:
//   - LFU: evicts the least frequently used entry; among entries with the same
//     access count the one touched longest ago goes first
//   - LRU: evicts the least recently used entry
//
// LFU is the default. Get, Put and Remove run in constant time for both.
//
// # Quick Start
//
//	spaces, err := cache.NewLFU[int64, Space](100)
//	if err != nil {
//		return err
//	}
//	spaces.Put(space.ID, space)
//	cached, ok := spaces.Get(space.ID)
//
// With metrics and an eviction hook:
//
//	users, err := cache.NewLFU[int64, User](100,
//		cache.WithMetrics[int64, User](registry, "users"),
//		cache.WithEvictionCallback[int64, User](func(id int64, _ User) {
//			logger.Debug("user evicted", "id", id)
//		}),
//	)
//
// From configuration:
//
//	c, err := cache.NewFromConfig[int64, Space](cache.Config{
//		Enabled:  true,
//		Strategy: cache.StrategyLFU,
//		Capacity: 100,
//	})
//
// A disabled configuration yields a no-op cache that always misses.
//
// # LFU Semantics
//
// A new entry starts with frequency 1. Every Get hit and every Put on an
// existing key increments the frequency and marks the entry as the most recent
// at its new frequency. A Put of a new key into a full cache evicts exactly one
// entry first. Updating an existing key never evicts. Remove of an absent key is
// a no-op.
//
// Entries are held in one list per frequency, with a key index pointing into
// those lists and the lowest populated frequency tracked separately.
//
// # Thread Safety
//
// Each cache instance guards its state with a single mutex, so every operation
// is atomic with respect to the others and the capacity bound holds under
// concurrent Puts. Instances share no state. Eviction callbacks run after the
// mutex is released and may safely call back into the cache.
//
// # Statistics and Metrics
//
// Statistics are always collected:
//
//	stats := c.Stats()
//	fmt.Printf("hit ratio: %.2f\n", stats.HitRatio())
//
// WithMetrics additionally exports coworking_cache_* counters and a size gauge,
// labelled by the prefix passed to it:
//
//	coworking_cache_hits_total{cache="spaces"}
//	coworking_cache_misses_total{cache="spaces"}
//	coworking_cache_puts_total{cache="spaces"}
//	coworking_cache_removes_total{cache="spaces"}
//	coworking_cache_evictions_total{cache="spaces"}
//	coworking_cache_size{cache="spaces"}
package cache
