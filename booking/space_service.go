package booking

import (
	"context"
	"log/slog"

	"github.com/c360/coworking/errors"
)

// SpaceService manages coworking spaces through the spaces cache.
type SpaceService struct {
	spaces SpaceRepository
	users  UserRepository
	caches *Caches
	logger *slog.Logger
}

// NewSpaceService creates a space service. The user repository is consulted
// when a deleted space takes reservations with it.
func NewSpaceService(spaces SpaceRepository, users UserRepository, caches *Caches, opts ...Option) *SpaceService {
	o := applyOptions("spaces", opts)
	return &SpaceService{
		spaces: spaces,
		users:  users,
		caches: caches,
		logger: o.logger,
	}
}

// Create stores a new space with a unique name.
func (s *SpaceService) Create(ctx context.Context, space Space) (Space, error) {
	if err := validateSpace("Create", space); err != nil {
		return Space{}, err
	}

	exists, err := s.spaces.ExistsByName(ctx, space.Name)
	if err != nil {
		return Space{}, storeErr(err, "SpaceService", "Create", "check name")
	}
	if exists {
		return Space{}, errors.Conflictf("SpaceService", "Create",
			"Space with name '%s' already exists", space.Name)
	}

	space.ID = 0
	space.ReservationIDs = nil
	saved, err := s.spaces.Create(ctx, space)
	if err != nil {
		return Space{}, storeErr(err, "SpaceService", "Create", "store space")
	}

	s.caches.Spaces.Put(saved.ID, saved.clone())
	s.logger.Debug("Space created", "id", saved.ID)
	return saved, nil
}

// Get returns a space, serving from the cache when possible.
func (s *SpaceService) Get(ctx context.Context, id int64) (Space, error) {
	if err := checkID("SpaceService", "Get", "space", id); err != nil {
		return Space{}, err
	}

	if cached, ok := s.caches.Spaces.Get(id); ok {
		return cached.clone(), nil
	}

	space, err := s.spaces.Get(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return Space{}, errors.NotFoundf("SpaceService", "Get", "Space not found with id: %d", id)
		}
		return Space{}, storeErr(err, "SpaceService", "Get", "load space")
	}

	s.caches.Spaces.Put(space.ID, space.clone())
	return space, nil
}

// List returns every space and caches each of them.
func (s *SpaceService) List(ctx context.Context) ([]Space, error) {
	spaces, err := s.spaces.List(ctx)
	if err != nil {
		return nil, storeErr(err, "SpaceService", "List", "list spaces")
	}
	for _, space := range spaces {
		s.caches.Spaces.Put(space.ID, space.clone())
	}
	return spaces, nil
}

// Update replaces the name and address of an existing space.
func (s *SpaceService) Update(ctx context.Context, id int64, space Space) (Space, error) {
	if err := checkID("SpaceService", "Update", "space", id); err != nil {
		return Space{}, err
	}
	if err := checkPathID("SpaceService", "Update", id, &space.ID); err != nil {
		return Space{}, err
	}
	if err := validateSpace("Update", space); err != nil {
		return Space{}, err
	}

	existing, err := s.spaces.Get(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return Space{}, errors.NotFoundf("SpaceService", "Update", "Space not found with id: %d", id)
		}
		return Space{}, storeErr(err, "SpaceService", "Update", "load space")
	}

	if existing.Name != space.Name {
		clashes, err := s.spaces.FindByNames(ctx, []string{space.Name})
		if err != nil {
			return Space{}, storeErr(err, "SpaceService", "Update", "check name")
		}
		for _, other := range clashes {
			if other.ID != id {
				return Space{}, errors.Conflictf("SpaceService", "Update",
					"Space with name '%s' already exists", space.Name)
			}
		}
	}

	updated, err := s.spaces.Update(ctx, space)
	if err != nil {
		return Space{}, storeErr(err, "SpaceService", "Update", "store space")
	}

	s.caches.Spaces.Put(updated.ID, updated.clone())
	return updated, nil
}

// Delete removes a space and, through the store, its reservations.
func (s *SpaceService) Delete(ctx context.Context, id int64) error {
	if err := checkID("SpaceService", "Delete", "space", id); err != nil {
		return err
	}

	existing, err := s.spaces.Get(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return errors.NotFoundf("SpaceService", "Delete", "Space not found with id: %d", id)
		}
		return storeErr(err, "SpaceService", "Delete", "load space")
	}

	// Users lose the cascaded reservations, so collect them before they go
	affected, err := s.users.BySpace(ctx, id)
	if err != nil {
		return storeErr(err, "SpaceService", "Delete", "find affected users")
	}

	if err := s.spaces.Delete(ctx, id); err != nil {
		if errors.IsNotFound(err) {
			return errors.NotFoundf("SpaceService", "Delete", "Space not found with id: %d", id)
		}
		return storeErr(err, "SpaceService", "Delete", "delete space")
	}

	s.caches.Spaces.Remove(id)
	s.caches.forgetReservations(existing.ReservationIDs...)
	for _, user := range affected {
		s.caches.forgetUsers(user.ID)
	}

	s.logger.Debug("Space deleted", "id", id, "reservations", len(existing.ReservationIDs))
	return nil
}

// CreateBatch stores several spaces at once. Blank names, names repeated within
// the request and names already stored reject the whole batch.
func (s *SpaceService) CreateBatch(ctx context.Context, spaces []Space) ([]Space, error) {
	if len(spaces) == 0 {
		return nil, errors.Invalidf("SpaceService", "CreateBatch", "At least one space must be specified")
	}

	batch := make([]Space, len(spaces))
	names := make([]string, 0, len(spaces))
	seen := make(map[string]bool, len(spaces))
	var duplicates []string
	for i, space := range spaces {
		if err := validateSpace("CreateBatch", space); err != nil {
			return nil, err
		}
		if seen[space.Name] {
			duplicates = append(duplicates, space.Name)
		}
		seen[space.Name] = true
		names = append(names, space.Name)
		batch[i] = Space{Name: space.Name, Address: space.Address}
	}
	if len(duplicates) > 0 {
		return nil, errors.Conflictf("SpaceService", "CreateBatch",
			"Duplicate space names in request: %v", duplicates)
	}

	existing, err := s.spaces.FindByNames(ctx, names)
	if err != nil {
		return nil, storeErr(err, "SpaceService", "CreateBatch", "check names")
	}
	if len(existing) > 0 {
		taken := make([]string, 0, len(existing))
		for _, space := range existing {
			taken = append(taken, space.Name)
		}
		return nil, errors.Conflictf("SpaceService", "CreateBatch",
			"Spaces with these names already exist: %v", taken)
	}

	saved, err := s.spaces.CreateBatch(ctx, batch)
	if err != nil {
		return nil, storeErr(err, "SpaceService", "CreateBatch", "store spaces")
	}
	for _, space := range saved {
		s.caches.Spaces.Put(space.ID, space.clone())
	}

	s.logger.Debug("Spaces created", "count", len(saved))
	return saved, nil
}
