package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"conduit-api/internal/model"
)

type EventRepository struct {
	col *mongo.Collection
}

func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{col: db.Collection(ColEvents)}
}

func (r *EventRepository) Create(ctx context.Context, event *model.AuthEvent) error {
	if _, err := r.col.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("create auth event failed: %w", wrapError(err))
	}
	return nil
}

func (r *EventRepository) ListByEmail(ctx context.Context, email string, limit int) ([]model.AuthEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.col.Find(ctx, bson.D{{Key: "email", Value: email}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list auth events failed: %w", err)
	}
	defer cursor.Close(ctx)

	events := make([]model.AuthEvent, 0)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode auth events failed: %w", err)
	}
	return events, nil
}
