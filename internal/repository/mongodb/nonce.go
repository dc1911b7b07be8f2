package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"conduit-api/internal/model"
	"conduit-api/internal/repository"
)

// NonceRepository keeps one {user, nonce} document per email. Increment is a
// single $inc, so concurrent logins and logoffs never lose an update.
type NonceRepository struct {
	col *mongo.Collection
}

func NewNonceRepository(db *mongo.Database) *NonceRepository {
	return &NonceRepository{col: db.Collection(ColNonce)}
}

func (r *NonceRepository) Create(ctx context.Context, email string) error {
	doc := model.Nonce{User: email, Counter: model.NonceBaseline}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create nonce failed: %w", wrapError(err))
	}
	return nil
}

func (r *NonceRepository) Increment(ctx context.Context, email string) (int64, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc model.Nonce
	err := r.col.FindOneAndUpdate(ctx,
		bson.D{{Key: "user", Value: email}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "nonce", Value: 1}}}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, wrapError(err)
	}
	return doc.Counter, nil
}

func (r *NonceRepository) Reset(ctx context.Context, email string) error {
	return updateOne(ctx, r.col,
		bson.D{{Key: "user", Value: email}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "nonce", Value: model.NonceBaseline}}}},
	)
}

func (r *NonceRepository) Current(ctx context.Context, email string) (int64, error) {
	doc, err := findOne[model.Nonce](ctx, r.col, bson.D{{Key: "user", Value: email}})
	if err != nil {
		return 0, err
	}
	return doc.Counter, nil
}

func (r *NonceRepository) Rekey(ctx context.Context, oldEmail, newEmail string) error {
	return updateOne(ctx, r.col,
		bson.D{{Key: "user", Value: oldEmail}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "user", Value: newEmail}}}},
	)
}

func (r *NonceRepository) Delete(ctx context.Context, email string) error {
	res, err := r.col.DeleteOne(ctx, bson.D{{Key: "user", Value: email}})
	if err != nil {
		return fmt.Errorf("delete nonce failed: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
