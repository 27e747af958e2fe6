package sqlite

import (
	"context"
	"database/sql"

	"github.com/c360/coworking/booking"
)

const (
	entityUser  = "user"
	userColumns = `u.id, u.first_name, u.middle_name, u.last_name, u.email, u.password`
)

// UserRepository implements booking.UserRepository
type UserRepository struct {
	store *Store
}

var _ booking.UserRepository = (*UserRepository)(nil)

// Create inserts a user and returns it with its new id
func (r *UserRepository) Create(ctx context.Context, user booking.User) (booking.User, error) {
	err := r.store.do(ctx, entityUser, "Create", func(q querier) error {
		var err error
		user.ID, err = insertUser(ctx, q, user)
		return err
	})
	if err != nil {
		return booking.User{}, err
	}
	user.ReservationIDs = []int64{}
	return user, nil
}

// CreateBatch inserts all users in one transaction
func (r *UserRepository) CreateBatch(ctx context.Context, users []booking.User) ([]booking.User, error) {
	saved := make([]booking.User, len(users))
	err := r.store.tx(ctx, entityUser, "CreateBatch", func(q querier) error {
		for i, user := range users {
			id, err := insertUser(ctx, q, user)
			if err != nil {
				return err
			}
			user.ID = id
			user.ReservationIDs = []int64{}
			saved[i] = user
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func insertUser(ctx context.Context, q querier, user booking.User) (int64, error) {
	res, err := q.ExecContext(ctx,
		`INSERT INTO users (first_name, middle_name, last_name, email, password) VALUES (?, ?, ?, ?, ?)`,
		user.FirstName, user.MiddleName, user.LastName, user.Email, user.Password)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Get loads one user with its reservation ids
func (r *UserRepository) Get(ctx context.Context, id int64) (booking.User, error) {
	users, err := r.query(ctx, "Get", `SELECT `+userColumns+` FROM users u WHERE u.id = ?`, id)
	if err != nil {
		return booking.User{}, err
	}
	if len(users) == 0 {
		return booking.User{}, notFound("Get", "User", id)
	}
	return users[0], nil
}

// List loads every user ordered by id
func (r *UserRepository) List(ctx context.Context) ([]booking.User, error) {
	return r.query(ctx, "List", `SELECT `+userColumns+` FROM users u ORDER BY u.id`)
}

// FindByEmails loads the users whose email is in emails
func (r *UserRepository) FindByEmails(ctx context.Context, emails []string) ([]booking.User, error) {
	if len(emails) == 0 {
		return []booking.User{}, nil
	}
	return r.query(ctx, "FindByEmails",
		`SELECT `+userColumns+` FROM users u WHERE u.email IN (`+placeholders(len(emails))+`) ORDER BY u.id`,
		toArgs(emails)...)
}

// WithReservationsOn loads the distinct users holding a reservation on date
func (r *UserRepository) WithReservationsOn(ctx context.Context, date booking.Date) ([]booking.User, error) {
	return r.query(ctx, "WithReservationsOn", `
		SELECT DISTINCT `+userColumns+`
		FROM users u
		JOIN reservation_users ru ON ru.user_id = u.id
		JOIN reservations r ON r.id = ru.reservation_id
		WHERE r.date = ?
		ORDER BY u.id`, date.String())
}

// BySpace loads the distinct users holding a reservation of spaceID
func (r *UserRepository) BySpace(ctx context.Context, spaceID int64) ([]booking.User, error) {
	return r.query(ctx, "BySpace", `
		SELECT DISTINCT `+userColumns+`
		FROM users u
		JOIN reservation_users ru ON ru.user_id = u.id
		JOIN reservations r ON r.id = ru.reservation_id
		WHERE r.space_id = ?
		ORDER BY u.id`, spaceID)
}

func (r *UserRepository) query(ctx context.Context, operation, query string, args ...any) ([]booking.User, error) {
	var users []booking.User
	err := r.store.do(ctx, entityUser, operation, func(q querier) error {
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		users, err = scanUsers(rows)
		if err != nil || len(users) == 0 {
			return err
		}
		return attachUserReservations(ctx, q, users)
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func scanUsers(rows *sql.Rows) ([]booking.User, error) {
	defer rows.Close()
	users := []booking.User{}
	for rows.Next() {
		var u booking.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.MiddleName, &u.LastName, &u.Email, &u.Password); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func attachUserReservations(ctx context.Context, q querier, users []booking.User) error {
	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	rows, err := q.QueryContext(ctx,
		`SELECT user_id, reservation_id FROM reservation_users
		WHERE user_id IN (`+placeholders(len(ids))+`) ORDER BY reservation_id`,
		toArgs(ids)...)
	if err != nil {
		return err
	}
	grouped, err := groupIDs(rows)
	if err != nil {
		return err
	}
	for i := range users {
		users[i].ReservationIDs = idsOrEmpty(grouped[users[i].ID])
	}
	return nil
}

// Update rewrites the user profile and password
func (r *UserRepository) Update(ctx context.Context, user booking.User) (booking.User, error) {
	err := r.store.do(ctx, entityUser, "Update", func(q querier) error {
		res, err := q.ExecContext(ctx, `
			UPDATE users SET first_name = ?, middle_name = ?, last_name = ?, email = ?, password = ?
			WHERE id = ?`,
			user.FirstName, user.MiddleName, user.LastName, user.Email, user.Password, user.ID)
		if err != nil {
			return err
		}
		return requireAffected(res, "Update", "User", user.ID)
	})
	if err != nil {
		return booking.User{}, err
	}
	return r.Get(ctx, user.ID)
}

// Delete removes the user; its reservation links cascade
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return r.store.do(ctx, entityUser, "Delete", func(q querier) error {
		res, err := q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireAffected(res, "Delete", "User", id)
	})
}

// Exists reports whether a user with id exists
func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return r.store.exists(ctx, entityUser, "Exists", `SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)`, id)
}

// ExistsByEmail reports whether a user with email exists
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.store.exists(ctx, entityUser, "ExistsByEmail",
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)`, email)
}
