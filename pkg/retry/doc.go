// Package retry provides exponential backoff retry logic for transient failures.
//
// The storage layer uses it to ride out SQLite lock contention:
//
//	err := retry.DoIf(ctx, cfg, errors.IsTransient, func() error {
//	    _, err := db.ExecContext(ctx, query, args...)
//	    return err
//	})
//
// Do retries every error, DoIf retries only errors accepted by the predicate, and
// DoWithResult returns a value alongside the error. Errors wrapped with NonRetryable
// stop the loop immediately.
//
// All operations respect context cancellation, both while fn runs and during the
// backoff delay. The jitter source is guarded by a mutex, so every function is safe
// for concurrent use.
package retry
