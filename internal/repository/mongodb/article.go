package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"conduit-api/internal/model"
)

type ArticleRepository struct {
	col *mongo.Collection
}

func NewArticleRepository(db *mongo.Database) *ArticleRepository {
	return &ArticleRepository{col: db.Collection(ColArticles)}
}

func (r *ArticleRepository) Create(ctx context.Context, article *model.Article) error {
	now := time.Now().UTC()
	article.CreatedAt = now
	article.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, article); err != nil {
		return fmt.Errorf("create article failed: %w", wrapError(err))
	}
	return nil
}

func (r *ArticleRepository) GetBySlug(ctx context.Context, slug string) (*model.Article, error) {
	return findOne[model.Article](ctx, r.col, bson.D{{Key: "slug", Value: slug}})
}

func (r *ArticleRepository) DeleteByAuthorID(ctx context.Context, authorID string) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.D{{Key: "author_id", Value: authorID}})
	if err != nil {
		return 0, fmt.Errorf("delete articles failed: %w", err)
	}
	return res.DeletedCount, nil
}
