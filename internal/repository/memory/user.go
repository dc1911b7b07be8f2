// Package memory implements the repository contracts on process memory. It
// backs the "memory" store driver and the service and transport tests.
package memory

import (
	"context"
	"sync"
	"time"

	"conduit-api/internal/model"
	"conduit-api/internal/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*model.User // by id
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*model.User)}
}

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return repository.ErrDuplicate
	}
	if r.findByEmail(user.Email) != nil {
		return repository.ErrDuplicate
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user := r.findByEmail(email)
	if user == nil {
		return nil, repository.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (r *UserRepository) UpdateFields(_ context.Context, email string, update model.UserUpdate) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := r.findByEmail(email)
	if user == nil {
		return nil, repository.ErrNotFound
	}
	if update.Email != "" && update.Email != email {
		if r.findByEmail(update.Email) != nil {
			return nil, repository.ErrDuplicate
		}
	}
	update.Apply(user)
	user.UpdatedAt = time.Now()
	out := *user
	return &out, nil
}

func (r *UserRepository) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Active = active
	user.UpdatedAt = time.Now()
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// findByEmail expects r.mu to be held.
func (r *UserRepository) findByEmail(email string) *model.User {
	for _, user := range r.users {
		if user.Email == email {
			return user
		}
	}
	return nil
}
