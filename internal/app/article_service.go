package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"conduit-api/internal/model"
	"conduit-api/internal/repository"
)

var (
	ErrSlugExists      = errors.New("article slug already exists")
	ErrArticleNotFound = errors.New("article not found")
)

type ArticleService struct {
	articles repository.ArticleRepository
}

type CreateArticleInput struct {
	Slug        string
	Title       string
	Description string
	Body        string
	Tags        []string
}

func NewArticleService(articles repository.ArticleRepository) *ArticleService {
	return &ArticleService{articles: articles}
}

// Create stores a new article authored by the identity's user. The slug is
// derived from the title when none is given.
func (s *ArticleService) Create(ctx context.Context, author *Identity, input CreateArticleInput) (*model.Article, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || author == nil {
		return nil, ErrInvalidInput
	}

	slug := Slugify(input.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return nil, ErrInvalidInput
	}

	tags := make([]string, 0, len(input.Tags))
	for _, tag := range input.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	article := &model.Article{
		ID:          uuid.NewString(),
		Slug:        slug,
		Title:       title,
		Description: input.Description,
		Body:        input.Body,
		Tags:        tags,
		Author:      author.Profile.Username,
		AuthorID:    author.UserID,
	}
	if err := s.articles.Create(ctx, article); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("create article failed: %w", err)
	}
	return article, nil
}

func (s *ArticleService) Get(ctx context.Context, slug string) (*model.Article, error) {
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return article, nil
}

// Slugify lowercases s and joins its letter and digit runs with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
