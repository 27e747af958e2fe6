package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/coworking/booking"
	"github.com/c360/coworking/config"
	"github.com/c360/coworking/errors"
	"github.com/c360/coworking/metric"
)

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	store, err := Open(context.Background(), config.StorageConfig{
		Path:        MemoryPath,
		BusyTimeout: time.Second,
	}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

var day = booking.NewDate(2030, time.March, 14)

func seed(t *testing.T, store *Store) (booking.Space, booking.User, booking.User) {
	t.Helper()
	ctx := context.Background()

	space, err := store.Spaces().Create(ctx, booking.Space{Name: "Loft", Address: "1 Main St"})
	require.NoError(t, err)
	alice, err := store.Users().Create(ctx, booking.User{
		FirstName: "Alice", LastName: "Smith", Email: "alice@example.com", Password: "password1",
	})
	require.NoError(t, err)
	bob, err := store.Users().Create(ctx, booking.User{
		FirstName: "Bob", LastName: "Jones", Email: "bob@example.com", Password: "password2",
	})
	require.NoError(t, err)
	return space, alice, bob
}

func TestOpen(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		_, err := Open(context.Background(), config.StorageConfig{})
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrMissingConfig)
		assert.True(t, errors.IsFatal(err))
	})

	t.Run("file database", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "coworking.db")
		store, err := Open(context.Background(), config.StorageConfig{Path: path, BusyTimeout: time.Second})
		require.NoError(t, err)
		require.NoError(t, store.Ping(context.Background()))
		require.NoError(t, store.Close())

		// Schema creation is idempotent
		store, err = Open(context.Background(), config.StorageConfig{Path: path, BusyTimeout: time.Second})
		require.NoError(t, err)
		defer store.Close()
		require.NoError(t, store.Ping(context.Background()))
	})
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "file::memory:?_busy_timeout=1500&_foreign_keys=on",
		dsn(config.StorageConfig{Path: MemoryPath, BusyTimeout: 1500 * time.Millisecond}))
	assert.Equal(t, "file:data/app.db?_busy_timeout=0&_foreign_keys=on",
		dsn(config.StorageConfig{Path: "data/app.db"}))
}

func TestSpaceRepository(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	spaces := store.Spaces()

	created, err := spaces.Create(ctx, booking.Space{Name: "Loft", Address: "1 Main St"})
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.Equal(t, []int64{}, created.ReservationIDs)

	got, err := spaces.Get(ctx, created.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(created, got); diff != "" {
		t.Errorf("space round trip mismatch (-created +got):\n%s", diff)
	}

	_, err = spaces.Create(ctx, booking.Space{Name: "Loft"})
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err), "duplicate name should conflict: %v", err)

	created.Address = "2 Side St"
	updated, err := spaces.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "2 Side St", updated.Address)

	exists, err := spaces.Exists(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = spaces.ExistsByName(ctx, "Loft")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = spaces.ExistsByName(ctx, "Nope")
	require.NoError(t, err)
	assert.False(t, exists)

	found, err := spaces.FindByNames(ctx, []string{"Loft", "Nope"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, created.ID, found[0].ID)

	found, err = spaces.FindByNames(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, found)

	require.NoError(t, spaces.Delete(ctx, created.ID))

	_, err = spaces.Get(ctx, created.ID)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, fmt.Sprintf("Space not found with id: %d", created.ID), err.Error())

	err = spaces.Delete(ctx, created.ID)
	assert.True(t, errors.IsNotFound(err))
	_, err = spaces.Update(ctx, created)
	assert.True(t, errors.IsNotFound(err))
}

func TestSpaceRepository_CreateBatchIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	saved, err := store.Spaces().CreateBatch(ctx, []booking.Space{{Name: "A"}, {Name: "B"}})
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "A", saved[0].Name)
	assert.Equal(t, "B", saved[1].Name)
	assert.Less(t, saved[0].ID, saved[1].ID)

	_, err = store.Spaces().CreateBatch(ctx, []booking.Space{{Name: "C"}, {Name: "A"}})
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))

	all, err := store.Spaces().List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2, "failed batch must not leave partial rows")
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	users := store.Users()

	created, err := users.Create(ctx, booking.User{
		FirstName: "Alice", MiddleName: "M", LastName: "Smith", Email: "alice@example.com", Password: "password1",
	})
	require.NoError(t, err)

	got, err := users.Get(ctx, created.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(created, got); diff != "" {
		t.Errorf("user round trip mismatch (-created +got):\n%s", diff)
	}
	assert.Equal(t, "password1", got.Password)

	_, err = users.Create(ctx, booking.User{FirstName: "A", LastName: "B", Email: "alice@example.com", Password: "x"})
	assert.True(t, errors.IsConflict(err))

	created.Email = "alice@new.example.com"
	updated, err := users.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.com", updated.Email)

	exists, err := users.ExistsByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	found, err := users.FindByEmails(ctx, []string{"alice@new.example.com"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	batch, err := users.CreateBatch(ctx, []booking.User{
		{FirstName: "B", LastName: "B", Email: "b@example.com", Password: "password"},
		{FirstName: "C", LastName: "C", Email: "c@example.com", Password: "password"},
	})
	require.NoError(t, err)
	assert.Len(t, batch, 2)

	all, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, users.Delete(ctx, created.ID))
	exists, err = users.Exists(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, exists)
	_, err = users.Get(ctx, created.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestReservationRepository(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	space, alice, bob := seed(t, store)
	reservations := store.Reservations()

	created, err := reservations.Create(ctx, booking.Reservation{
		Date: day, SpaceID: space.ID, UserIDs: []int64{bob.ID, alice.ID, bob.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{alice.ID, bob.ID}, created.UserIDs)

	got, err := reservations.Get(ctx, created.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(created, got); diff != "" {
		t.Errorf("reservation round trip mismatch (-created +got):\n%s", diff)
	}
	assert.Equal(t, day.String(), got.Date.String())

	t.Run("derived ids", func(t *testing.T) {
		s, err := store.Spaces().Get(ctx, space.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{created.ID}, s.ReservationIDs)

		u, err := store.Users().Get(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{created.ID}, u.ReservationIDs)
	})

	t.Run("one reservation per space and date", func(t *testing.T) {
		_, err := reservations.Create(ctx, booking.Reservation{Date: day, SpaceID: space.ID, UserIDs: []int64{alice.ID}})
		require.Error(t, err)
		assert.True(t, errors.IsConflict(err))

		exists, err := reservations.ExistsBySpaceAndDate(ctx, space.ID, day)
		require.NoError(t, err)
		assert.True(t, exists)
		exists, err = reservations.ExistsBySpaceAndDate(ctx, space.ID, booking.NewDate(2030, time.March, 15))
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("missing references", func(t *testing.T) {
		_, err := reservations.Create(ctx, booking.Reservation{Date: day, SpaceID: 999, UserIDs: []int64{alice.ID}})
		assert.True(t, errors.IsNotFound(err))

		next := booking.NewDate(2030, time.March, 20)
		_, err = reservations.Create(ctx, booking.Reservation{Date: next, SpaceID: space.ID, UserIDs: []int64{999}})
		assert.True(t, errors.IsNotFound(err))

		exists, err := reservations.ExistsBySpaceAndDate(ctx, space.ID, next)
		require.NoError(t, err)
		assert.False(t, exists, "failed create must roll back the reservation row")
	})

	t.Run("user lookups", func(t *testing.T) {
		onDay, err := store.Users().WithReservationsOn(ctx, day)
		require.NoError(t, err)
		assert.Len(t, onDay, 2)

		bySpace, err := store.Users().BySpace(ctx, space.ID)
		require.NoError(t, err)
		assert.Len(t, bySpace, 2)

		none, err := store.Users().WithReservationsOn(ctx, booking.NewDate(2031, time.January, 1))
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("update replaces users", func(t *testing.T) {
		moved := booking.NewDate(2030, time.April, 1)
		updated, err := reservations.Update(ctx, booking.Reservation{
			ID: created.ID, Date: moved, SpaceID: space.ID, UserIDs: []int64{bob.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{bob.ID}, updated.UserIDs)
		assert.Equal(t, moved.String(), updated.Date.String())

		u, err := store.Users().Get(ctx, alice.ID)
		require.NoError(t, err)
		assert.Empty(t, u.ReservationIDs)

		_, err = reservations.Update(ctx, booking.Reservation{ID: 999, Date: moved, SpaceID: space.ID})
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("find by spaces and dates", func(t *testing.T) {
		found, err := reservations.FindBySpacesAndDates(ctx, []int64{space.ID},
			[]booking.Date{booking.NewDate(2030, time.April, 1), day})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, created.ID, found[0].ID)

		found, err = reservations.FindBySpacesAndDates(ctx, nil, []booking.Date{day})
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestReservationRepository_Cascades(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	space, alice, bob := seed(t, store)

	saved, err := store.Reservations().CreateBatch(ctx, []booking.Reservation{
		{Date: day, SpaceID: space.ID, UserIDs: []int64{alice.ID}},
		{Date: booking.NewDate(2030, time.March, 15), SpaceID: space.ID, UserIDs: []int64{alice.ID, bob.ID}},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)

	t.Run("user delete detaches", func(t *testing.T) {
		require.NoError(t, store.Users().Delete(ctx, bob.ID))
		r, err := store.Reservations().Get(ctx, saved[1].ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{alice.ID}, r.UserIDs)
	})

	t.Run("space delete removes reservations", func(t *testing.T) {
		require.NoError(t, store.Spaces().Delete(ctx, space.ID))
		all, err := store.Reservations().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		u, err := store.Users().Get(ctx, alice.ID)
		require.NoError(t, err)
		assert.Empty(t, u.ReservationIDs)
	})

	t.Run("delete missing", func(t *testing.T) {
		err := store.Reservations().Delete(ctx, saved[0].ID)
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestStore_RecordsOperations(t *testing.T) {
	metrics := metric.NewMetrics()
	store := openTestStore(t, WithMetrics(metrics))

	_, err := store.Spaces().List(context.Background())
	require.NoError(t, err)
	_, err = store.Spaces().Exists(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("space", "List")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("space", "Exists")))
}

func TestStore_CanceledContext(t *testing.T) {
	store := openTestStore(t, WithRetry(errors.RetryConfig{MaxRetries: 0, BackoffFactor: 2}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Spaces().List(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"busy", sqlite3.Error{Code: sqlite3.ErrBusy}, errors.IsTransient},
		{"locked", sqlite3.Error{Code: sqlite3.ErrLocked}, errors.IsTransient},
		{"unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, errors.IsConflict},
		{"primary key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, errors.IsConflict},
		{"foreign key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, errors.IsNotFound},
		{"corrupt", sqlite3.Error{Code: sqlite3.ErrCorrupt}, errors.IsFatal},
		{"deadline", context.DeadlineExceeded, errors.IsTransient},
		{"other", fmt.Errorf("syntax error"), errors.IsFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(classify(tt.err, "space", "Create")))
		})
	}

	assert.NoError(t, classify(nil, "space", "Create"))

	already := errors.NotFoundf("SQLiteStore", "Get", "Space not found with id: 1")
	assert.Same(t, already, classify(already, "space", "Get"))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
