package memory

import (
	"context"
	"sync"

	"conduit-api/internal/model"
	"conduit-api/internal/repository"
)

type NonceRepository struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewNonceRepository() *NonceRepository {
	return &NonceRepository{counters: make(map[string]int64)}
}

func (r *NonceRepository) Create(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.counters[email]; ok {
		return repository.ErrDuplicate
	}
	r.counters[email] = model.NonceBaseline
	return nil
}

func (r *NonceRepository) Increment(_ context.Context, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.counters[email]
	if !ok {
		return 0, repository.ErrNotFound
	}
	current++
	r.counters[email] = current
	return current, nil
}

func (r *NonceRepository) Reset(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.counters[email]; !ok {
		return repository.ErrNotFound
	}
	r.counters[email] = model.NonceBaseline
	return nil
}

func (r *NonceRepository) Current(_ context.Context, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.counters[email]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return current, nil
}

func (r *NonceRepository) Rekey(_ context.Context, oldEmail, newEmail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.counters[oldEmail]
	if !ok {
		return repository.ErrNotFound
	}
	if oldEmail == newEmail {
		return nil
	}
	if _, taken := r.counters[newEmail]; taken {
		return repository.ErrDuplicate
	}
	delete(r.counters, oldEmail)
	r.counters[newEmail] = current
	return nil
}

func (r *NonceRepository) Delete(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.counters[email]; !ok {
		return repository.ErrNotFound
	}
	delete(r.counters, email)
	return nil
}
