package booking

import "context"

// SpaceRepository is the authoritative store for spaces.
//
// Implementations report a missing entity with an error wrapping
// errors.ErrNotFound and a uniqueness violation with one wrapping
// errors.ErrConflict. ReservationIDs on returned spaces reflect the stored
// reservations; on input they are ignored.
type SpaceRepository interface {
	Create(ctx context.Context, space Space) (Space, error)
	// CreateBatch stores all spaces atomically and returns them in input order.
	CreateBatch(ctx context.Context, spaces []Space) ([]Space, error)
	Get(ctx context.Context, id int64) (Space, error)
	List(ctx context.Context) ([]Space, error)
	Update(ctx context.Context, space Space) (Space, error)
	// Delete removes the space together with its reservations.
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	FindByNames(ctx context.Context, names []string) ([]Space, error)
}

// UserRepository is the authoritative store for users.
type UserRepository interface {
	Create(ctx context.Context, user User) (User, error)
	CreateBatch(ctx context.Context, users []User) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user User) (User, error)
	// Delete removes the user and detaches it from its reservations.
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByEmails(ctx context.Context, emails []string) ([]User, error)
	// WithReservationsOn returns the distinct users holding a reservation on date.
	WithReservationsOn(ctx context.Context, date Date) ([]User, error)
	// BySpace returns the distinct users holding any reservation of the space.
	BySpace(ctx context.Context, spaceID int64) ([]User, error)
}

// ReservationRepository is the authoritative store for reservations.
//
// A space holds at most one reservation per date; violating that is reported
// as errors.ErrConflict.
type ReservationRepository interface {
	Create(ctx context.Context, reservation Reservation) (Reservation, error)
	CreateBatch(ctx context.Context, reservations []Reservation) ([]Reservation, error)
	Get(ctx context.Context, id int64) (Reservation, error)
	List(ctx context.Context) ([]Reservation, error)
	Update(ctx context.Context, reservation Reservation) (Reservation, error)
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
	ExistsBySpaceAndDate(ctx context.Context, spaceID int64, date Date) (bool, error)
	// FindBySpacesAndDates returns reservations whose space is in spaceIDs and
	// whose date is in dates.
	FindBySpacesAndDates(ctx context.Context, spaceIDs []int64, dates []Date) ([]Reservation, error)
}
