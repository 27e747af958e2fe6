package booking

import (
	"context"
	"log/slog"

	"github.com/c360/coworking/errors"
)

// UserService manages users through the users cache.
type UserService struct {
	users  UserRepository
	caches *Caches
	logger *slog.Logger
}

// NewUserService creates a user service.
func NewUserService(users UserRepository, caches *Caches, opts ...Option) *UserService {
	o := applyOptions("users", opts)
	return &UserService{
		users:  users,
		caches: caches,
		logger: o.logger,
	}
}

// Create stores a new user with a unique email.
func (s *UserService) Create(ctx context.Context, user User) (User, error) {
	if err := validateUser("Create", user, true); err != nil {
		return User{}, err
	}

	exists, err := s.users.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return User{}, storeErr(err, "UserService", "Create", "check email")
	}
	if exists {
		return User{}, errors.Conflictf("UserService", "Create", "Email already exists: %s", user.Email)
	}

	user.ID = 0
	user.ReservationIDs = nil
	saved, err := s.users.Create(ctx, user)
	if err != nil {
		return User{}, storeErr(err, "UserService", "Create", "store user")
	}

	s.caches.Users.Put(saved.ID, saved.clone())
	s.logger.Debug("User created", "id", saved.ID)
	return saved, nil
}

// Get returns a user, serving from the cache when possible.
func (s *UserService) Get(ctx context.Context, id int64) (User, error) {
	if err := checkID("UserService", "Get", "user", id); err != nil {
		return User{}, err
	}

	if cached, ok := s.caches.Users.Get(id); ok {
		return cached.clone(), nil
	}

	user, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return User{}, errors.NotFoundf("UserService", "Get", "User not found with id: %d", id)
		}
		return User{}, storeErr(err, "UserService", "Get", "load user")
	}

	s.caches.Users.Put(user.ID, user.clone())
	return user, nil
}

// List returns every user and caches each of them.
func (s *UserService) List(ctx context.Context) ([]User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, storeErr(err, "UserService", "List", "list users")
	}
	s.cacheAll(users)
	return users, nil
}

// Update replaces the profile of an existing user. An empty password keeps the
// stored one.
func (s *UserService) Update(ctx context.Context, id int64, user User) (User, error) {
	if err := checkID("UserService", "Update", "user", id); err != nil {
		return User{}, err
	}
	if err := checkPathID("UserService", "Update", id, &user.ID); err != nil {
		return User{}, err
	}
	if err := validateUser("Update", user, false); err != nil {
		return User{}, err
	}

	existing, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return User{}, errors.NotFoundf("UserService", "Update", "User not found with id: %d", id)
		}
		return User{}, storeErr(err, "UserService", "Update", "load user")
	}

	if existing.Email != user.Email {
		taken, err := s.users.ExistsByEmail(ctx, user.Email)
		if err != nil {
			return User{}, storeErr(err, "UserService", "Update", "check email")
		}
		if taken {
			return User{}, errors.Conflictf("UserService", "Update", "Email already exists: %s", user.Email)
		}
	}

	if user.Password == "" {
		user.Password = existing.Password
	}

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return User{}, storeErr(err, "UserService", "Update", "store user")
	}

	s.caches.Users.Put(updated.ID, updated.clone())
	return updated, nil
}

// Delete removes a user and detaches it from its reservations.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := checkID("UserService", "Delete", "user", id); err != nil {
		return err
	}

	existing, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return errors.NotFoundf("UserService", "Delete", "User not found with id: %d", id)
		}
		return storeErr(err, "UserService", "Delete", "load user")
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.IsNotFound(err) {
			return errors.NotFoundf("UserService", "Delete", "User not found with id: %d", id)
		}
		return storeErr(err, "UserService", "Delete", "delete user")
	}

	s.caches.Users.Remove(id)
	// The user's reservations now list one user fewer
	s.caches.forgetReservations(existing.ReservationIDs...)

	s.logger.Debug("User deleted", "id", id)
	return nil
}

// CreateBatch stores several users at once. Emails repeated within the request
// or already stored reject the whole batch.
func (s *UserService) CreateBatch(ctx context.Context, users []User) ([]User, error) {
	if len(users) == 0 {
		return nil, errors.Invalidf("UserService", "CreateBatch", "At least one user must be specified")
	}

	batch := make([]User, len(users))
	emails := make([]string, 0, len(users))
	seen := make(map[string]bool, len(users))
	var duplicates []string
	for i, user := range users {
		if err := validateUser("CreateBatch", user, true); err != nil {
			return nil, err
		}
		if seen[user.Email] {
			duplicates = append(duplicates, user.Email)
		}
		seen[user.Email] = true
		emails = append(emails, user.Email)

		user.ID = 0
		user.ReservationIDs = nil
		batch[i] = user
	}
	if len(duplicates) > 0 {
		return nil, errors.Conflictf("UserService", "CreateBatch", "Duplicate emails in request: %v", duplicates)
	}

	existing, err := s.users.FindByEmails(ctx, emails)
	if err != nil {
		return nil, storeErr(err, "UserService", "CreateBatch", "check emails")
	}
	if len(existing) > 0 {
		taken := make([]string, 0, len(existing))
		for _, user := range existing {
			taken = append(taken, user.Email)
		}
		return nil, errors.Conflictf("UserService", "CreateBatch", "Emails already exist: %v", taken)
	}

	saved, err := s.users.CreateBatch(ctx, batch)
	if err != nil {
		return nil, storeErr(err, "UserService", "CreateBatch", "store users")
	}
	s.cacheAll(saved)

	s.logger.Debug("Users created", "count", len(saved))
	return saved, nil
}

// WithReservationsOn returns the users holding a reservation on date.
func (s *UserService) WithReservationsOn(ctx context.Context, date Date) ([]User, error) {
	if date.IsZero() {
		return nil, errors.Invalidf("UserService", "WithReservationsOn", "Date is required")
	}

	users, err := s.users.WithReservationsOn(ctx, date)
	if err != nil {
		return nil, storeErr(err, "UserService", "WithReservationsOn", "find users")
	}
	s.cacheAll(users)
	return users, nil
}

// BySpace returns the users holding any reservation of a space.
func (s *UserService) BySpace(ctx context.Context, spaceID int64) ([]User, error) {
	if err := checkID("UserService", "BySpace", "coworking space", spaceID); err != nil {
		return nil, err
	}

	users, err := s.users.BySpace(ctx, spaceID)
	if err != nil {
		return nil, storeErr(err, "UserService", "BySpace", "find users")
	}
	s.cacheAll(users)
	return users, nil
}

func (s *UserService) cacheAll(users []User) {
	for _, user := range users {
		s.caches.Users.Put(user.ID, user.clone())
	}
}
