package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/c360/coworking/booking"
	"github.com/c360/coworking/errors"
)

const entityReservation = "reservation"

// ReservationRepository implements booking.ReservationRepository
type ReservationRepository struct {
	store *Store
}

var _ booking.ReservationRepository = (*ReservationRepository)(nil)

// Create inserts a reservation and its user links in one transaction
func (r *ReservationRepository) Create(ctx context.Context, res booking.Reservation) (booking.Reservation, error) {
	err := r.store.tx(ctx, entityReservation, "Create", func(q querier) error {
		var err error
		res.ID, err = insertReservation(ctx, q, res)
		return err
	})
	if err != nil {
		return booking.Reservation{}, err
	}
	res.UserIDs = sortedIDs(res.UserIDs)
	return res, nil
}

// CreateBatch inserts all reservations in one transaction
func (r *ReservationRepository) CreateBatch(ctx context.Context, reservations []booking.Reservation) ([]booking.Reservation, error) {
	saved := make([]booking.Reservation, len(reservations))
	err := r.store.tx(ctx, entityReservation, "CreateBatch", func(q querier) error {
		for i, res := range reservations {
			id, err := insertReservation(ctx, q, res)
			if err != nil {
				return err
			}
			res.ID = id
			res.UserIDs = sortedIDs(res.UserIDs)
			saved[i] = res
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func insertReservation(ctx context.Context, q querier, res booking.Reservation) (int64, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO reservations (date, space_id) VALUES (?, ?)`, res.Date.String(), res.SpaceID)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, linkUsers(ctx, q, id, res.UserIDs)
}

func linkUsers(ctx context.Context, q querier, reservationID int64, userIDs []int64) error {
	for _, userID := range userIDs {
		if _, err := q.ExecContext(ctx,
			`INSERT OR IGNORE INTO reservation_users (reservation_id, user_id) VALUES (?, ?)`,
			reservationID, userID); err != nil {
			return err
		}
	}
	return nil
}

// Get loads one reservation with its user ids
func (r *ReservationRepository) Get(ctx context.Context, id int64) (booking.Reservation, error) {
	reservations, err := r.query(ctx, "Get", `SELECT id, date, space_id FROM reservations WHERE id = ?`, id)
	if err != nil {
		return booking.Reservation{}, err
	}
	if len(reservations) == 0 {
		return booking.Reservation{}, notFound("Get", "Reservation", id)
	}
	return reservations[0], nil
}

// List loads every reservation ordered by id
func (r *ReservationRepository) List(ctx context.Context) ([]booking.Reservation, error) {
	return r.query(ctx, "List", `SELECT id, date, space_id FROM reservations ORDER BY id`)
}

// FindBySpacesAndDates loads reservations of any of spaceIDs on any of dates
func (r *ReservationRepository) FindBySpacesAndDates(ctx context.Context, spaceIDs []int64, dates []booking.Date) ([]booking.Reservation, error) {
	if len(spaceIDs) == 0 || len(dates) == 0 {
		return []booking.Reservation{}, nil
	}
	days := make([]string, len(dates))
	for i, d := range dates {
		days[i] = d.String()
	}
	query := fmt.Sprintf(`SELECT id, date, space_id FROM reservations
		WHERE space_id IN (%s) AND date IN (%s) ORDER BY id`,
		placeholders(len(spaceIDs)), placeholders(len(days)))
	return r.query(ctx, "FindBySpacesAndDates", query, append(toArgs(spaceIDs), toArgs(days)...)...)
}

func (r *ReservationRepository) query(ctx context.Context, operation, query string, args ...any) ([]booking.Reservation, error) {
	var reservations []booking.Reservation
	err := r.store.do(ctx, entityReservation, operation, func(q querier) error {
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		reservations, err = scanReservations(rows)
		if err != nil || len(reservations) == 0 {
			return err
		}
		return attachReservationUsers(ctx, q, reservations)
	})
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func scanReservations(rows *sql.Rows) ([]booking.Reservation, error) {
	defer rows.Close()
	reservations := []booking.Reservation{}
	for rows.Next() {
		var (
			res  booking.Reservation
			date string
		)
		if err := rows.Scan(&res.ID, &date, &res.SpaceID); err != nil {
			return nil, err
		}
		parsed, err := booking.ParseDate(date)
		if err != nil {
			return nil, errors.WrapFatal(fmt.Errorf("%w: reservation %d has date %q", errors.ErrDataCorrupted, res.ID, date),
				"SQLiteStore", "scanReservations", "parse date")
		}
		res.Date = parsed
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func attachReservationUsers(ctx context.Context, q querier, reservations []booking.Reservation) error {
	ids := make([]int64, len(reservations))
	for i, res := range reservations {
		ids[i] = res.ID
	}
	rows, err := q.QueryContext(ctx,
		`SELECT reservation_id, user_id FROM reservation_users
		WHERE reservation_id IN (`+placeholders(len(ids))+`) ORDER BY user_id`,
		toArgs(ids)...)
	if err != nil {
		return err
	}
	grouped, err := groupIDs(rows)
	if err != nil {
		return err
	}
	for i := range reservations {
		reservations[i].UserIDs = idsOrEmpty(grouped[reservations[i].ID])
	}
	return nil
}

// Update rewrites date, space and the full set of users
func (r *ReservationRepository) Update(ctx context.Context, res booking.Reservation) (booking.Reservation, error) {
	err := r.store.tx(ctx, entityReservation, "Update", func(q querier) error {
		result, err := q.ExecContext(ctx,
			`UPDATE reservations SET date = ?, space_id = ? WHERE id = ?`, res.Date.String(), res.SpaceID, res.ID)
		if err != nil {
			return err
		}
		if err := requireAffected(result, "Update", "Reservation", res.ID); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM reservation_users WHERE reservation_id = ?`, res.ID); err != nil {
			return err
		}
		return linkUsers(ctx, q, res.ID, res.UserIDs)
	})
	if err != nil {
		return booking.Reservation{}, err
	}
	return r.Get(ctx, res.ID)
}

// Delete removes the reservation and its user links
func (r *ReservationRepository) Delete(ctx context.Context, id int64) error {
	return r.store.do(ctx, entityReservation, "Delete", func(q querier) error {
		result, err := q.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireAffected(result, "Delete", "Reservation", id)
	})
}

// Exists reports whether a reservation with id exists
func (r *ReservationRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return r.store.exists(ctx, entityReservation, "Exists",
		`SELECT EXISTS (SELECT 1 FROM reservations WHERE id = ?)`, id)
}

// ExistsBySpaceAndDate reports whether the space is reserved on date
func (r *ReservationRepository) ExistsBySpaceAndDate(ctx context.Context, spaceID int64, date booking.Date) (bool, error) {
	return r.store.exists(ctx, entityReservation, "ExistsBySpaceAndDate",
		`SELECT EXISTS (SELECT 1 FROM reservations WHERE space_id = ? AND date = ?)`, spaceID, date.String())
}

func sortedIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return idsOrEmpty(slices.Compact(out))
}
