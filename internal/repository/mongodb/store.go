// Package mongodb implements the repository contracts on MongoDB.
//
// Collection names follow the layout of the original document store: users,
// nonce and article. Unique indexes back the duplicate-key semantics of the
// repositories, so EnsureIndexes must run before serving traffic.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"conduit-api/internal/repository"
)

const (
	ColUsers    = "users"
	ColNonce    = "nonce"
	ColArticles = "article"
	ColEvents   = "auth_events"
)

// EnsureIndexes creates the unique and lookup indexes every repository relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	type idx struct {
		col    string
		keys   bson.D
		unique bool
	}

	indexes := []idx{
		{ColUsers, bson.D{{Key: "email", Value: 1}}, true},
		{ColNonce, bson.D{{Key: "user", Value: 1}}, true},
		{ColArticles, bson.D{{Key: "slug", Value: 1}}, true},
		{ColArticles, bson.D{{Key: "author_id", Value: 1}}, false},
		{ColEvents, bson.D{{Key: "email", Value: 1}, {Key: "created_at", Value: -1}}, false},
	}

	for _, i := range indexes {
		model := mongo.IndexModel{Keys: i.keys}
		if i.unique {
			model.Options = options.Index().SetUnique(true)
		}
		if _, err := db.Collection(i.col).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index on %s failed: %w", i.col, err)
		}
	}
	return nil
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}

func findOne[T any](ctx context.Context, col *mongo.Collection, filter bson.D) (*T, error) {
	var result T
	if err := col.FindOne(ctx, filter).Decode(&result); err != nil {
		return nil, wrapError(err)
	}
	return &result, nil
}

// updateOne applies update to the single document matching filter and
// reports ErrNotFound when nothing matched.
func updateOne(ctx context.Context, col *mongo.Collection, filter, update bson.D) error {
	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
