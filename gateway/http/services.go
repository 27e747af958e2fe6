package http

import (
	"context"

	"github.com/c360/coworking/booking"
	"github.com/c360/coworking/pkg/cache"
)

// SpaceService is the space API the gateway serves
type SpaceService interface {
	Create(ctx context.Context, space booking.Space) (booking.Space, error)
	CreateBatch(ctx context.Context, spaces []booking.Space) ([]booking.Space, error)
	Get(ctx context.Context, id int64) (booking.Space, error)
	List(ctx context.Context) ([]booking.Space, error)
	Update(ctx context.Context, id int64, space booking.Space) (booking.Space, error)
	Delete(ctx context.Context, id int64) error
}

// UserService is the user API the gateway serves
type UserService interface {
	Create(ctx context.Context, user booking.User) (booking.User, error)
	CreateBatch(ctx context.Context, users []booking.User) ([]booking.User, error)
	Get(ctx context.Context, id int64) (booking.User, error)
	List(ctx context.Context) ([]booking.User, error)
	Update(ctx context.Context, id int64, user booking.User) (booking.User, error)
	Delete(ctx context.Context, id int64) error
	WithReservationsOn(ctx context.Context, date booking.Date) ([]booking.User, error)
	BySpace(ctx context.Context, spaceID int64) ([]booking.User, error)
}

// ReservationService is the reservation API the gateway serves
type ReservationService interface {
	Create(ctx context.Context, r booking.Reservation) (booking.Reservation, error)
	CreateBatch(ctx context.Context, reservations []booking.Reservation) ([]booking.Reservation, error)
	Get(ctx context.Context, id int64) (booking.Reservation, error)
	List(ctx context.Context) ([]booking.Reservation, error)
	Update(ctx context.Context, id int64, r booking.Reservation) (booking.Reservation, error)
	Delete(ctx context.Context, id int64) error
}

// CacheStats reports a statistics snapshot per entity cache
type CacheStats interface {
	Stats() map[string]cache.StatsSummary
}

// VisitCounter counts requests per URL path
type VisitCounter interface {
	Register(route, path string)
	Count(path string) int64
	All() map[string]int64
}

var (
	_ SpaceService       = (*booking.SpaceService)(nil)
	_ UserService        = (*booking.UserService)(nil)
	_ ReservationService = (*booking.ReservationService)(nil)
	_ CacheStats         = (*booking.Caches)(nil)
	_ VisitCounter       = (*booking.VisitCounter)(nil)
)
