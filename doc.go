// Package coworking is a booking service for coworking spaces. Spaces, users
// and reservations live in SQLite and are served over a REST API, with one
// bounded LFU cache per entity kind in front of the store.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│         gateway/http                │  Routing, JSON Schema,
//	│   (REST, request ids, rate limit)   │  error mapping, visits
//	└─────────────────────────────────────┘
//	           ↓ calls
//	┌─────────────────────────────────────┐
//	│         booking services            │  Validation, business
//	│   (spaces, users, reservations)     │  rules, invalidation
//	└─────────────────────────────────────┘
//	      ↓ read/write through       ↓ authoritative
//	┌──────────────────┐   ┌──────────────────────┐
//	│    pkg/cache     │   │   storage/sqlite     │
//	│ (LFU, 100 each)  │   │ (tables, retries)    │
//	└──────────────────┘   └──────────────────────┘
//
// # Caching
//
// Each entity kind has its own cache keyed by id, bounded at 100 entries by
// default. A read that misses loads from the store and populates the cache;
// every write updates the store first and then the cache. Writes that change
// derived id lists (a space's reservations, a user's reservations) evict the
// affected entries so the next read reloads them. When a cache is full the
// entry with the lowest access count is evicted, least recently touched first
// among ties.
//
// # Packages
//
//   - booking: entities, repositories, caches and services
//   - pkg/cache: generic LFU, LRU and no-op caches with statistics and metrics
//   - storage/sqlite: the authoritative store
//   - gateway/http: the REST API
//   - health: component checks and the /health endpoint
//   - metric: Prometheus registry, core metrics and the /metrics server
//   - config: JSON or YAML configuration with environment overrides
//   - errors: classified errors and retry configuration
//   - cmd/coworking: the service binary
package coworking
