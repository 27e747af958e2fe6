package booking

import (
	"log/slog"

	"github.com/c360/coworking/config"
	"github.com/c360/coworking/errors"
	"github.com/c360/coworking/metric"
	"github.com/c360/coworking/pkg/cache"
)

// DefaultCacheCapacity is the per-entity cache bound.
const DefaultCacheCapacity = cache.DefaultCapacity

// Cache names double as the "cache" metric label.
const (
	SpacesCache       = "spaces"
	ReservationsCache = "reservations"
	UsersCache        = "users"
)

// Caches holds the three independent entity caches keyed by entity id.
type Caches struct {
	Spaces       cache.Cache[int64, Space]
	Reservations cache.Cache[int64, Reservation]
	Users        cache.Cache[int64, User]
}

// NewCaches builds one cache per entity kind from cfg. When registry is nil the
// caches keep their statistics but export no metrics.
func NewCaches(cfg config.CacheConfig, registry metric.MetricsRegistrar, logger *slog.Logger) (*Caches, error) {
	if logger == nil {
		logger = slog.Default()
	}

	spaces, err := cache.NewFromConfig[int64, Space](cfg.Spaces,
		cache.WithMetrics[int64, Space](registry, SpacesCache),
		cache.WithEvictionCallback[int64, Space](evictionLogger[Space](logger, SpacesCache)))
	if err != nil {
		return nil, errors.Wrap(err, "Caches", "NewCaches", "create spaces cache")
	}

	reservations, err := cache.NewFromConfig[int64, Reservation](cfg.Reservations,
		cache.WithMetrics[int64, Reservation](registry, ReservationsCache),
		cache.WithEvictionCallback[int64, Reservation](evictionLogger[Reservation](logger, ReservationsCache)))
	if err != nil {
		return nil, errors.Wrap(err, "Caches", "NewCaches", "create reservations cache")
	}

	users, err := cache.NewFromConfig[int64, User](cfg.Users,
		cache.WithMetrics[int64, User](registry, UsersCache),
		cache.WithEvictionCallback[int64, User](evictionLogger[User](logger, UsersCache)))
	if err != nil {
		return nil, errors.Wrap(err, "Caches", "NewCaches", "create users cache")
	}

	logger.Info("Entity caches ready",
		"spaces", cfg.Spaces.Capacity,
		"reservations", cfg.Reservations.Capacity,
		"users", cfg.Users.Capacity)

	return &Caches{Spaces: spaces, Reservations: reservations, Users: users}, nil
}

// NewDefaultCaches returns three LFU caches of DefaultCacheCapacity without metrics.
func NewDefaultCaches() *Caches {
	cfg := config.CacheConfig{
		Spaces:       cache.DefaultConfig(),
		Reservations: cache.DefaultConfig(),
		Users:        cache.DefaultConfig(),
	}
	caches, err := NewCaches(cfg, nil, slog.New(slog.DiscardHandler))
	if err != nil {
		// Defaults are always valid and no registry is involved
		panic(err)
	}
	return caches
}

func evictionLogger[V any](logger *slog.Logger, name string) cache.EvictCallback[int64, V] {
	return func(id int64, _ V) {
		logger.Debug("Cache entry evicted", "cache", name, "id", id)
	}
}

// Stats returns a statistics snapshot per cache. Disabled caches are omitted.
func (c *Caches) Stats() map[string]cache.StatsSummary {
	summaries := make(map[string]cache.StatsSummary, 3)
	add := func(name string, stats *cache.Statistics) {
		if stats != nil {
			summaries[name] = stats.Summary()
		}
	}
	add(SpacesCache, c.Spaces.Stats())
	add(ReservationsCache, c.Reservations.Stats())
	add(UsersCache, c.Users.Stats())
	return summaries
}

// Clear empties all three caches.
func (c *Caches) Clear() {
	c.Spaces.Clear()
	c.Reservations.Clear()
	c.Users.Clear()
}

// forgetSpaces drops cached spaces whose reservation ids changed.
func (c *Caches) forgetSpaces(ids ...int64) {
	for _, id := range ids {
		c.Spaces.Remove(id)
	}
}

// forgetUsers drops cached users whose reservation ids changed.
func (c *Caches) forgetUsers(ids ...int64) {
	for _, id := range ids {
		c.Users.Remove(id)
	}
}

// forgetReservations drops cached reservations changed by a cascade.
func (c *Caches) forgetReservations(ids ...int64) {
	for _, id := range ids {
		c.Reservations.Remove(id)
	}
}
