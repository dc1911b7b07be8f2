package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"conduit-api/internal/model"
	"conduit-api/internal/repository"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(ColUsers)}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("create user failed: %w", wrapError(err))
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, r.col, bson.D{{Key: "email", Value: email}})
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return findOne[model.User](ctx, r.col, bson.D{{Key: "_id", Value: id}})
}

func (r *UserRepository) UpdateFields(ctx context.Context, email string, update model.UserUpdate) (*model.User, error) {
	set := bson.D{{Key: "updated_at", Value: time.Now().UTC()}}
	if update.Username != "" {
		set = append(set, bson.E{Key: "username", Value: update.Username})
	}
	if update.Email != "" {
		set = append(set, bson.E{Key: "email", Value: update.Email})
	}
	if update.PasswordHash != "" {
		set = append(set, bson.E{Key: "password", Value: update.PasswordHash})
	}
	if update.Bio != "" {
		set = append(set, bson.E{Key: "bio", Value: update.Bio})
	}
	if update.Image != "" {
		set = append(set, bson.E{Key: "image", Value: update.Image})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user model.User
	err := r.col.FindOneAndUpdate(ctx,
		bson.D{{Key: "email", Value: email}},
		bson.D{{Key: "$set", Value: set}},
		opts,
	).Decode(&user)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) error {
	return updateOne(ctx, r.col,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "active", Value: active},
			{Key: "updated_at", Value: time.Now().UTC()},
		}}},
	)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete user failed: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
