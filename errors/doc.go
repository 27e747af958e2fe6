// Package errors provides standardized error handling for the coworking service.
//
// # Error Classification
//
// Errors fall into three classes:
//
//   - Transient: lock contention, timeouts, temporary unavailability (retry recommended)
//   - Invalid: malformed input, validation failures, missing or conflicting entities
//   - Fatal: bad configuration, corrupted data (stop processing)
//
// Classification works through errors.Is and errors.As, so wrapped chains keep
// their class.
//
// # Error Wrapping Pattern
//
// All wrapping follows the format "component.method: action failed: cause":
//
//	if err := db.PingContext(ctx); err != nil {
//	    return errors.WrapTransient(err, "Store", "Ping", "ping database")
//	}
//
// Domain failures that reach API clients are built with Invalidf, NotFoundf and
// Conflictf. Their message is the client-facing text, and the chain carries
// ErrInvalidData, ErrNotFound or ErrConflict so the HTTP layer can pick a status code.
//
// # Retry
//
// RetryConfig decides whether an error deserves another attempt and converts to
// retry.Config for use with retry.DoIf.
package errors
