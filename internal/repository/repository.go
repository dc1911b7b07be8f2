// Package repository defines the persistence contracts shared by every
// storage backend (MongoDB, MySQL, Redis and the in-memory store).
package repository

import (
	"context"
	"errors"

	"conduit-api/internal/model"
)

var (
	// ErrNotFound is returned when no record matches the lookup key.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert or rename collides with a unique key.
	ErrDuplicate = errors.New("record already exists")
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	// UpdateFields merges the non-empty fields of update into the user
	// stored under email and returns the updated record.
	UpdateFields(ctx context.Context, email string, update model.UserUpdate) (*model.User, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// NonceRepository stores one monotonic counter per user email. Increment
// must be a single atomic operation in the backing store.
type NonceRepository interface {
	Create(ctx context.Context, email string) error
	Increment(ctx context.Context, email string) (int64, error)
	Reset(ctx context.Context, email string) error
	Current(ctx context.Context, email string) (int64, error)
	Rekey(ctx context.Context, oldEmail, newEmail string) error
	Delete(ctx context.Context, email string) error
}

type ArticleRepository interface {
	Create(ctx context.Context, article *model.Article) error
	GetBySlug(ctx context.Context, slug string) (*model.Article, error)
	DeleteByAuthorID(ctx context.Context, authorID string) (int64, error)
}

type EventRepository interface {
	Create(ctx context.Context, event *model.AuthEvent) error
	ListByEmail(ctx context.Context, email string, limit int) ([]model.AuthEvent, error)
}
