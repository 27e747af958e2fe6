package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/c360/coworking/booking"
)

const entitySpace = "space"

// SpaceRepository implements booking.SpaceRepository
type SpaceRepository struct {
	store *Store
}

var _ booking.SpaceRepository = (*SpaceRepository)(nil)

// Create inserts a space and returns it with its new id
func (r *SpaceRepository) Create(ctx context.Context, space booking.Space) (booking.Space, error) {
	err := r.store.do(ctx, entitySpace, "Create", func(q querier) error {
		var err error
		space.ID, err = insertSpace(ctx, q, space)
		return err
	})
	if err != nil {
		return booking.Space{}, err
	}
	space.ReservationIDs = []int64{}
	return space, nil
}

// CreateBatch inserts all spaces in one transaction
func (r *SpaceRepository) CreateBatch(ctx context.Context, spaces []booking.Space) ([]booking.Space, error) {
	saved := make([]booking.Space, len(spaces))
	err := r.store.tx(ctx, entitySpace, "CreateBatch", func(q querier) error {
		for i, space := range spaces {
			id, err := insertSpace(ctx, q, space)
			if err != nil {
				return err
			}
			space.ID = id
			space.ReservationIDs = []int64{}
			saved[i] = space
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func insertSpace(ctx context.Context, q querier, space booking.Space) (int64, error) {
	res, err := q.ExecContext(ctx,
		`INSERT INTO spaces (name, address) VALUES (?, ?)`, space.Name, space.Address)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Get loads one space with its reservation ids
func (r *SpaceRepository) Get(ctx context.Context, id int64) (booking.Space, error) {
	var space booking.Space
	err := r.store.do(ctx, entitySpace, "Get", func(q querier) error {
		row := q.QueryRowContext(ctx, `SELECT id, name, address FROM spaces WHERE id = ?`, id)
		if err := row.Scan(&space.ID, &space.Name, &space.Address); err != nil {
			if stderrors.Is(err, sql.ErrNoRows) {
				return notFound("Get", "Space", id)
			}
			return err
		}
		rows, err := q.QueryContext(ctx, `SELECT id FROM reservations WHERE space_id = ? ORDER BY id`, id)
		if err != nil {
			return err
		}
		space.ReservationIDs, err = collectIDs(rows)
		return err
	})
	if err != nil {
		return booking.Space{}, err
	}
	return space, nil
}

// List loads every space ordered by id
func (r *SpaceRepository) List(ctx context.Context) ([]booking.Space, error) {
	return r.query(ctx, "List", `SELECT id, name, address FROM spaces ORDER BY id`)
}

// FindByNames loads the spaces whose name is in names
func (r *SpaceRepository) FindByNames(ctx context.Context, names []string) ([]booking.Space, error) {
	if len(names) == 0 {
		return []booking.Space{}, nil
	}
	return r.query(ctx, "FindByNames",
		`SELECT id, name, address FROM spaces WHERE name IN (`+placeholders(len(names))+`) ORDER BY id`,
		toArgs(names)...)
}

func (r *SpaceRepository) query(ctx context.Context, operation, query string, args ...any) ([]booking.Space, error) {
	var spaces []booking.Space
	err := r.store.do(ctx, entitySpace, operation, func(q querier) error {
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		spaces, err = scanSpaces(rows)
		if err != nil || len(spaces) == 0 {
			return err
		}
		return attachSpaceReservations(ctx, q, spaces)
	})
	if err != nil {
		return nil, err
	}
	return spaces, nil
}

func scanSpaces(rows *sql.Rows) ([]booking.Space, error) {
	defer rows.Close()
	spaces := []booking.Space{}
	for rows.Next() {
		var space booking.Space
		if err := rows.Scan(&space.ID, &space.Name, &space.Address); err != nil {
			return nil, err
		}
		spaces = append(spaces, space)
	}
	return spaces, rows.Err()
}

func attachSpaceReservations(ctx context.Context, q querier, spaces []booking.Space) error {
	ids := make([]int64, len(spaces))
	for i, space := range spaces {
		ids[i] = space.ID
	}
	rows, err := q.QueryContext(ctx,
		`SELECT space_id, id FROM reservations WHERE space_id IN (`+placeholders(len(ids))+`) ORDER BY id`,
		toArgs(ids)...)
	if err != nil {
		return err
	}
	grouped, err := groupIDs(rows)
	if err != nil {
		return err
	}
	for i := range spaces {
		spaces[i].ReservationIDs = idsOrEmpty(grouped[spaces[i].ID])
	}
	return nil
}

// Update rewrites name and address
func (r *SpaceRepository) Update(ctx context.Context, space booking.Space) (booking.Space, error) {
	err := r.store.do(ctx, entitySpace, "Update", func(q querier) error {
		res, err := q.ExecContext(ctx,
			`UPDATE spaces SET name = ?, address = ? WHERE id = ?`, space.Name, space.Address, space.ID)
		if err != nil {
			return err
		}
		return requireAffected(res, "Update", "Space", space.ID)
	})
	if err != nil {
		return booking.Space{}, err
	}
	return r.Get(ctx, space.ID)
}

// Delete removes the space; reservations cascade
func (r *SpaceRepository) Delete(ctx context.Context, id int64) error {
	return r.store.do(ctx, entitySpace, "Delete", func(q querier) error {
		res, err := q.ExecContext(ctx, `DELETE FROM spaces WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireAffected(res, "Delete", "Space", id)
	})
}

// Exists reports whether a space with id exists
func (r *SpaceRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return r.store.exists(ctx, entitySpace, "Exists", `SELECT EXISTS (SELECT 1 FROM spaces WHERE id = ?)`, id)
}

// ExistsByName reports whether a space named name exists
func (r *SpaceRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	return r.store.exists(ctx, entitySpace, "ExistsByName",
		`SELECT EXISTS (SELECT 1 FROM spaces WHERE name = ?)`, name)
}
