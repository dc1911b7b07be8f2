// Package redis keeps nonce counters in Redis. Every mutation is a single
// command or Lua script, so the counter never loses a concurrent increment.
package redis

import (
	"context"
	"errors"
	"fmt"

	redisv9 "github.com/redis/go-redis/v9"

	"conduit-api/internal/model"
	"conduit-api/internal/repository"
)

const defaultKeyPrefix = "nonce:"

var incrementScript = redisv9.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
return redis.call('INCR', KEYS[1])
`)

var rekeyScript = redisv9.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
if KEYS[1] == KEYS[2] then
	return 1
end
return redis.call('RENAMENX', KEYS[1], KEYS[2])
`)

type NonceRepository struct {
	client    *redisv9.Client
	keyPrefix string
}

func NewNonceRepository(client *redisv9.Client, keyPrefix string) *NonceRepository {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &NonceRepository{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (r *NonceRepository) Create(ctx context.Context, email string) error {
	created, err := r.client.SetNX(ctx, r.key(email), model.NonceBaseline, 0).Result()
	if err != nil {
		return fmt.Errorf("redis create nonce failed: %w", err)
	}
	if !created {
		return repository.ErrDuplicate
	}
	return nil
}

func (r *NonceRepository) Increment(ctx context.Context, email string) (int64, error) {
	counter, err := incrementScript.Run(ctx, r.client, []string{r.key(email)}).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis increment nonce failed: %w", err)
	}
	if counter < 0 {
		return 0, repository.ErrNotFound
	}
	return counter, nil
}

func (r *NonceRepository) Reset(ctx context.Context, email string) error {
	updated, err := r.client.SetXX(ctx, r.key(email), model.NonceBaseline, 0).Result()
	if err != nil {
		return fmt.Errorf("redis reset nonce failed: %w", err)
	}
	if !updated {
		return repository.ErrNotFound
	}
	return nil
}

func (r *NonceRepository) Current(ctx context.Context, email string) (int64, error) {
	counter, err := r.client.Get(ctx, r.key(email)).Int64()
	if errors.Is(err, redisv9.Nil) {
		return 0, repository.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("redis get nonce failed: %w", err)
	}
	return counter, nil
}

func (r *NonceRepository) Rekey(ctx context.Context, oldEmail, newEmail string) error {
	res, err := rekeyScript.Run(ctx, r.client, []string{r.key(oldEmail), r.key(newEmail)}).Int64()
	if err != nil {
		return fmt.Errorf("redis rekey nonce failed: %w", err)
	}
	switch res {
	case -1:
		return repository.ErrNotFound
	case 0:
		return repository.ErrDuplicate
	}
	return nil
}

func (r *NonceRepository) Delete(ctx context.Context, email string) error {
	removed, err := r.client.Del(ctx, r.key(email)).Result()
	if err != nil {
		return fmt.Errorf("redis delete nonce failed: %w", err)
	}
	if removed == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *NonceRepository) key(email string) string {
	return r.keyPrefix + email
}
