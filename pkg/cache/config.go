package cache

import (
	"fmt"

	"github.com/c360/coworking/errors"
)

// Strategy defines the eviction strategy for the cache.
type Strategy string

const (
	// StrategyLFU evicts the least frequently used entry, oldest access first on ties.
	StrategyLFU Strategy = "lfu"

	// StrategyLRU evicts the least recently used entry.
	StrategyLRU Strategy = "lru"
)

// DefaultCapacity is the entry bound used when no capacity is configured.
const DefaultCapacity = 100

// Config contains configuration for cache creation.
type Config struct {
	// Enabled determines if caching is enabled.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Strategy determines the eviction strategy.
	Strategy Strategy `json:"strategy" yaml:"strategy"`

	// Capacity is the maximum number of entries.
	Capacity int `json:"capacity" yaml:"capacity"`
}

// DefaultConfig returns a default cache configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		Strategy: StrategyLFU,
		Capacity: DefaultCapacity,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil // No validation needed if disabled
	}

	switch c.Strategy {
	case StrategyLFU, StrategyLRU:
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "cache", "Validate",
			fmt.Sprintf("unknown cache strategy: %q", c.Strategy))
	}

	if c.Capacity <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "cache", "Validate",
			fmt.Sprintf("capacity must be positive, got %d", c.Capacity))
	}

	return nil
}

// NewFromConfig creates a cache based on the provided configuration.
// Returns a disabled cache (NoopCache) if config.Enabled is false.
func NewFromConfig[K comparable, V any](config Config, options ...Option[K, V]) (Cache[K, V], error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if !config.Enabled {
		return NewNoop[K, V](), nil
	}

	switch config.Strategy {
	case StrategyLRU:
		return NewLRU[K, V](config.Capacity, options...)
	default:
		return NewLFU[K, V](config.Capacity, options...)
	}
}

// NewLFU creates a new LFU cache holding at most capacity entries.
// A non-positive capacity is rejected with an invalid-class error.
func NewLFU[K comparable, V any](capacity int, options ...Option[K, V]) (Cache[K, V], error) {
	c, err := newLFUCache[K, V](capacity, applyOptions(options...))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NewLRU creates a new LRU cache holding at most capacity entries.
func NewLRU[K comparable, V any](capacity int, options ...Option[K, V]) (Cache[K, V], error) {
	c, err := newLRUCache[K, V](capacity, applyOptions(options...))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NewNoop creates a cache that does nothing (always returns cache misses).
// This is useful when caching is disabled via configuration.
func NewNoop[K comparable, V any]() Cache[K, V] {
	return &noopCache[K, V]{}
}

// noopCache is a cache implementation that does nothing.
type noopCache[K comparable, V any] struct{}

func (c *noopCache[K, V]) Get(_ K) (V, bool) {
	var zero V
	return zero, false
}

func (c *noopCache[K, V]) Put(_ K, _ V) bool { return false }

func (c *noopCache[K, V]) Remove(_ K) bool { return false }

func (c *noopCache[K, V]) Clear() {}

func (c *noopCache[K, V]) Size() int { return 0 }

func (c *noopCache[K, V]) Capacity() int { return 0 }

func (c *noopCache[K, V]) Keys() []K { return nil }

func (c *noopCache[K, V]) Stats() *Statistics { return nil }
