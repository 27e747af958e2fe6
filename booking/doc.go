// Package booking holds the coworking domain: spaces, users and reservations,
// the services that manage them and the bounded entity caches in front of the
// authoritative store.
//
// # Read-Through and Write-Through
//
// Every service owns one entity cache and follows the same protocol:
//
//   - Create and Update put the stored entity into the cache once the
//     repository confirms the write
//   - Get by id consults the cache first and, on a miss, loads the entity from
//     the repository and caches it
//   - Delete removes the entity from the cache after the repository confirms
//   - List and lookup queries cache every entity they return
//
// The repository stays authoritative. A cache only ever holds snapshots that
// were read from or written to it, and those snapshots are copied on the way in
// and out so callers cannot mutate cached state.
//
// Spaces and users carry the ids of their reservations. Writes that change a
// reservation therefore evict the affected space and user entries as well, so
// the next read reloads them with current reservation ids.
//
// # Caches
//
// Caches bundles the three instances, one per entity kind. They share no state
// and default to LFU with capacity 100:
//
//	caches, err := booking.NewCaches(cfg.Cache, registry, logger)
//	spaces := booking.NewSpaceService(spaceRepo, userRepo, caches)
//
// # Errors
//
// Validation failures are invalid-class errors around errors.ErrInvalidData.
// Missing entities wrap errors.ErrNotFound and uniqueness or date conflicts wrap
// errors.ErrConflict. Error messages are written for API clients.
package booking
