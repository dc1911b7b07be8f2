package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"conduit-api/internal/model"
	"conduit-api/internal/repository"
)

type ArticleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) Create(ctx context.Context, article *model.Article) error {
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		return fmt.Errorf("create article failed: %w", wrapError(err))
	}
	return nil
}

func (r *ArticleRepository) GetBySlug(ctx context.Context, slug string) (*model.Article, error) {
	var article model.Article
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("query article by slug failed: %w", err)
	}
	return &article, nil
}

func (r *ArticleRepository) DeleteByAuthorID(ctx context.Context, authorID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("author_id = ?", authorID).Delete(&model.Article{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete articles failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}
