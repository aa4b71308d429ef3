package storage

import (
	"context"
	"sync"

	"tastebook/core"

	"github.com/google/uuid"
)

// MockRepository is an in-memory Repository for tests.
type MockRepository struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*core.User
	byEmail  map[string]uuid.UUID
	profiles map[uuid.UUID]*core.Profile
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		users:    make(map[uuid.UUID]*core.User),
		byEmail:  make(map[string]uuid.UUID),
		profiles: make(map[uuid.UUID]*core.Profile),
	}
}

func (r *MockRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*core.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *MockRepository) FindUserByEmail(ctx context.Context, email string) (*core.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *r.users[id]
	return &copied, nil
}

func (r *MockRepository) CreateUser(ctx context.Context, user *core.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return core.ErrDuplicateEmail
	}

	copied := *user
	r.users[user.ID] = &copied
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MockRepository) FindProfile(ctx context.Context, userID uuid.UUID) (*core.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[userID]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *profile
	return &copied, nil
}

func (r *MockRepository) UpsertProfile(ctx context.Context, profile *core.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *profile
	r.profiles[profile.UserID] = &copied
	return nil
}

// UserCount reports how many accounts exist, for test assertions.
func (r *MockRepository) UserCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}
