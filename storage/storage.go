package storage

import (
	"context"

	"github.com/c360/coworking/booking"
)

// Pinger reports whether a backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store is the pluggable authoritative backend for spaces, users and
// reservations.
//
// The repositories returned by a Store share one underlying database, so
// cascades performed by one repository are visible through the others.
// Example implementations:
//   - sqlite.Store: SQLite through database/sql
//
// Thread Safety:
// All Store implementations must be safe for concurrent use from multiple goroutines.
type Store interface {
	Pinger

	Spaces() booking.SpaceRepository
	Users() booking.UserRepository
	Reservations() booking.ReservationRepository

	// Close releases the backend. Repositories must not be used afterwards.
	Close() error
}
