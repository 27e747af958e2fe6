package booking

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/c360/coworking/errors"
)

// ReservationService manages reservations through the reservations cache and
// keeps the derived reservation ids of cached spaces and users current.
type ReservationService struct {
	reservations ReservationRepository
	spaces       SpaceRepository
	users        UserRepository
	caches       *Caches
	logger       *slog.Logger
	now          func() time.Time
}

// NewReservationService creates a reservation service.
func NewReservationService(reservations ReservationRepository, spaces SpaceRepository,
	users UserRepository, caches *Caches, opts ...Option) *ReservationService {
	o := applyOptions("reservations", opts)
	return &ReservationService{
		reservations: reservations,
		spaces:       spaces,
		users:        users,
		caches:       caches,
		logger:       o.logger,
		now:          o.now,
	}
}

func (s *ReservationService) today() Date {
	return DateOf(s.now())
}

// Create books a space for a date. The space and every user must exist and the
// space must be free on that date.
func (s *ReservationService) Create(ctx context.Context, r Reservation) (Reservation, error) {
	if err := validateReservation("Create", r, s.today()); err != nil {
		return Reservation{}, err
	}
	r.ID = 0
	r.UserIDs = distinctIDs(r.UserIDs)

	if err := s.requireParticipants(ctx, "Create", r.SpaceID, r.UserIDs); err != nil {
		return Reservation{}, err
	}

	taken, err := s.reservations.ExistsBySpaceAndDate(ctx, r.SpaceID, r.Date)
	if err != nil {
		return Reservation{}, storeErr(err, "ReservationService", "Create", "check date")
	}
	if taken {
		return Reservation{}, errors.Conflictf("ReservationService", "Create",
			"Coworking space %d is already reserved on %s", r.SpaceID, r.Date)
	}

	saved, err := s.reservations.Create(ctx, r)
	if err != nil {
		return Reservation{}, storeErr(err, "ReservationService", "Create", "store reservation")
	}

	s.caches.Reservations.Put(saved.ID, saved.clone())
	s.caches.forgetSpaces(saved.SpaceID)
	s.caches.forgetUsers(saved.UserIDs...)

	s.logger.Debug("Reservation created", "id", saved.ID, "space", saved.SpaceID, "date", saved.Date.String())
	return saved, nil
}

// Get returns a reservation, serving from the cache when possible.
func (s *ReservationService) Get(ctx context.Context, id int64) (Reservation, error) {
	if err := checkID("ReservationService", "Get", "reservation", id); err != nil {
		return Reservation{}, err
	}

	if cached, ok := s.caches.Reservations.Get(id); ok {
		return cached.clone(), nil
	}

	r, err := s.reservations.Get(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return Reservation{}, errors.NotFoundf("ReservationService", "Get",
				"Reservation not found with id: %d", id)
		}
		return Reservation{}, storeErr(err, "ReservationService", "Get", "load reservation")
	}

	s.caches.Reservations.Put(r.ID, r.clone())
	return r, nil
}

// List returns every reservation and caches each of them.
func (s *ReservationService) List(ctx context.Context) ([]Reservation, error) {
	reservations, err := s.reservations.List(ctx)
	if err != nil {
		return nil, storeErr(err, "ReservationService", "List", "list reservations")
	}
	for _, r := range reservations {
		s.caches.Reservations.Put(r.ID, r.clone())
	}
	return reservations, nil
}

// Update moves a reservation to another date, space or set of users.
func (s *ReservationService) Update(ctx context.Context, id int64, r Reservation) (Reservation, error) {
	if err := checkID("ReservationService", "Update", "reservation", id); err != nil {
		return Reservation{}, err
	}
	if err := checkPathID("ReservationService", "Update", id, &r.ID); err != nil {
		return Reservation{}, err
	}
	if err := validateReservation("Update", r, s.today()); err != nil {
		return Reservation{}, err
	}
	r.UserIDs = distinctIDs(r.UserIDs)

	existing, err := s.reservations.Get(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return Reservation{}, errors.NotFoundf("ReservationService", "Update",
				"Reservation not found with id: %d", id)
		}
		return Reservation{}, storeErr(err, "ReservationService", "Update", "load reservation")
	}

	if err := s.requireParticipants(ctx, "Update", r.SpaceID, r.UserIDs); err != nil {
		return Reservation{}, err
	}

	if existing.SpaceID != r.SpaceID || !existing.Date.Equal(r.Date.Time) {
		clashes, err := s.reservations.FindBySpacesAndDates(ctx, []int64{r.SpaceID}, []Date{r.Date})
		if err != nil {
			return Reservation{}, storeErr(err, "ReservationService", "Update", "check date")
		}
		for _, other := range clashes {
			if other.ID != id {
				return Reservation{}, errors.Conflictf("ReservationService", "Update",
					"Coworking space %d is already reserved on %s", r.SpaceID, r.Date)
			}
		}
	}

	updated, err := s.reservations.Update(ctx, r)
	if err != nil {
		return Reservation{}, storeErr(err, "ReservationService", "Update", "store reservation")
	}

	s.caches.Reservations.Put(updated.ID, updated.clone())
	s.caches.forgetSpaces(existing.SpaceID, updated.SpaceID)
	s.caches.forgetUsers(existing.UserIDs...)
	s.caches.forgetUsers(updated.UserIDs...)
	return updated, nil
}

// Delete cancels a reservation.
func (s *ReservationService) Delete(ctx context.Context, id int64) error {
	if err := checkID("ReservationService", "Delete", "reservation", id); err != nil {
		return err
	}

	existing, err := s.reservations.Get(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return errors.NotFoundf("ReservationService", "Delete", "Reservation not found with id: %d", id)
		}
		return storeErr(err, "ReservationService", "Delete", "load reservation")
	}

	if err := s.reservations.Delete(ctx, id); err != nil {
		if errors.IsNotFound(err) {
			return errors.NotFoundf("ReservationService", "Delete", "Reservation not found with id: %d", id)
		}
		return storeErr(err, "ReservationService", "Delete", "delete reservation")
	}

	s.caches.Reservations.Remove(id)
	s.caches.forgetSpaces(existing.SpaceID)
	s.caches.forgetUsers(existing.UserIDs...)

	s.logger.Debug("Reservation deleted", "id", id)
	return nil
}

// slot identifies one space on one date.
type slot struct {
	spaceID int64
	date    string
}

func (sl slot) String() string {
	return fmt.Sprintf("space %d on %s", sl.spaceID, sl.date)
}

// CreateBatch books several slots at once. A slot repeated within the request
// or already reserved rejects the whole batch.
func (s *ReservationService) CreateBatch(ctx context.Context, reservations []Reservation) ([]Reservation, error) {
	if len(reservations) == 0 {
		return nil, errors.Invalidf("ReservationService", "CreateBatch",
			"At least one reservation must be specified")
	}

	today := s.today()
	batch := make([]Reservation, len(reservations))
	requested := make(map[slot]bool, len(reservations))
	var spaceIDs, userIDs []int64
	var dates []Date
	var duplicates []string
	for i, r := range reservations {
		if err := validateReservation("CreateBatch", r, today); err != nil {
			return nil, err
		}
		r.ID = 0
		r.UserIDs = distinctIDs(r.UserIDs)
		batch[i] = r

		key := slot{spaceID: r.SpaceID, date: r.Date.String()}
		if requested[key] {
			duplicates = append(duplicates, key.String())
		}
		requested[key] = true
		spaceIDs = append(spaceIDs, r.SpaceID)
		userIDs = append(userIDs, r.UserIDs...)
		dates = append(dates, r.Date)
	}
	if len(duplicates) > 0 {
		return nil, errors.Conflictf("ReservationService", "CreateBatch",
			"Duplicate reservations in request: %s", strings.Join(duplicates, ", "))
	}

	spaceIDs = distinctIDs(spaceIDs)
	userIDs = distinctIDs(userIDs)
	for _, spaceID := range spaceIDs {
		if err := s.requireSpace(ctx, "CreateBatch", spaceID); err != nil {
			return nil, err
		}
	}
	if err := s.requireUsers(ctx, "CreateBatch", userIDs); err != nil {
		return nil, err
	}

	// The store matches the cross product of spaces and dates; keep exact slots
	candidates, err := s.reservations.FindBySpacesAndDates(ctx, spaceIDs, dates)
	if err != nil {
		return nil, storeErr(err, "ReservationService", "CreateBatch", "check dates")
	}
	var conflicts []string
	for _, existing := range candidates {
		key := slot{spaceID: existing.SpaceID, date: existing.Date.String()}
		if requested[key] {
			conflicts = append(conflicts, key.String())
		}
	}
	if len(conflicts) > 0 {
		return nil, errors.Conflictf("ReservationService", "CreateBatch",
			"Coworking spaces already reserved: %s", strings.Join(conflicts, ", "))
	}

	saved, err := s.reservations.CreateBatch(ctx, batch)
	if err != nil {
		return nil, storeErr(err, "ReservationService", "CreateBatch", "store reservations")
	}
	for _, r := range saved {
		s.caches.Reservations.Put(r.ID, r.clone())
	}
	s.caches.forgetSpaces(spaceIDs...)
	s.caches.forgetUsers(userIDs...)

	s.logger.Debug("Reservations created", "count", len(saved))
	return saved, nil
}

func (s *ReservationService) requireParticipants(ctx context.Context, method string, spaceID int64, userIDs []int64) error {
	if err := s.requireSpace(ctx, method, spaceID); err != nil {
		return err
	}
	return s.requireUsers(ctx, method, userIDs)
}

// requireSpace checks that a space exists. A cached space counts as existing.
func (s *ReservationService) requireSpace(ctx context.Context, method string, id int64) error {
	if _, ok := s.caches.Spaces.Get(id); ok {
		return nil
	}
	exists, err := s.spaces.Exists(ctx, id)
	if err != nil {
		return storeErr(err, "ReservationService", method, "check space")
	}
	if !exists {
		return errors.NotFoundf("ReservationService", method, "Coworking space not found with id: %d", id)
	}
	return nil
}

// requireUsers checks that every user exists. Cached users count as existing.
func (s *ReservationService) requireUsers(ctx context.Context, method string, ids []int64) error {
	for _, id := range ids {
		if _, ok := s.caches.Users.Get(id); ok {
			continue
		}
		exists, err := s.users.Exists(ctx, id)
		if err != nil {
			return storeErr(err, "ReservationService", method, "check user")
		}
		if !exists {
			return errors.NotFoundf("ReservationService", method, "User not found with id: %d", id)
		}
	}
	return nil
}

// distinctIDs returns the sorted unique ids.
func distinctIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
