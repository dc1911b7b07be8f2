package memory

import (
	"context"
	"sync"
	"time"

	"conduit-api/internal/model"
	"conduit-api/internal/repository"
)

type ArticleRepository struct {
	mu       sync.RWMutex
	articles map[string]*model.Article // by slug
}

func NewArticleRepository() *ArticleRepository {
	return &ArticleRepository{articles: make(map[string]*model.Article)}
}

func (r *ArticleRepository) Create(_ context.Context, article *model.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.articles[article.Slug]; ok {
		return repository.ErrDuplicate
	}
	now := time.Now()
	article.CreatedAt = now
	article.UpdatedAt = now
	stored := *article
	stored.Tags = append([]string(nil), article.Tags...)
	r.articles[article.Slug] = &stored
	return nil
}

func (r *ArticleRepository) GetBySlug(_ context.Context, slug string) (*model.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	article, ok := r.articles[slug]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *article
	out.Tags = append([]string(nil), article.Tags...)
	return &out, nil
}

func (r *ArticleRepository) DeleteByAuthorID(_ context.Context, authorID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for slug, article := range r.articles {
		if article.AuthorID == authorID {
			delete(r.articles, slug)
			deleted++
		}
	}
	return deleted, nil
}
