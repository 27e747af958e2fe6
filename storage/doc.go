// Package storage defines the backend interface behind the booking services.
//
// # Overview
//
// The booking services never talk to a database directly. They receive the
// three repository interfaces from package booking, and a Store bundles those
// repositories with the lifecycle operations the process needs: Ping for the
// health endpoint and Close for shutdown.
//
// # Error Contract
//
// Implementations classify their failures with package errors:
//   - a missing entity wraps errors.ErrNotFound
//   - a uniqueness or date collision wraps errors.ErrConflict
//   - lock contention is transient and retried internally
//   - anything else is fatal
//
// # Implementations
//
// Subpackage sqlite provides the production backend. Open it with a file path
// for durable storage, or with sqlite.MemoryPath for tests:
//
//	store, err := sqlite.Open(ctx, cfg.Storage, sqlite.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	spaces := booking.NewSpaceService(store.Spaces(), store.Users(), caches)
package storage
