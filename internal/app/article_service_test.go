package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conduit-api/internal/model"
	"conduit-api/internal/repository/memory"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"How to train your dragon": "how-to-train-your-dragon",
		"  Hello,   World!  ":      "hello-world",
		"Go 1.24 release":          "go-1-24-release",
		"---":                      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestArticleService_Create(t *testing.T) {
	svc := NewArticleService(memory.NewArticleRepository())
	ctx := context.Background()
	author := &Identity{Profile: model.Profile{Username: "jake"}, UserID: "u-1", Email: "jake@jake.jake"}

	article, err := svc.Create(ctx, author, CreateArticleInput{
		Title: "How to train your dragon",
		Body:  "You have to believe",
		Tags:  []string{"dragons", " ", "training"},
	})
	require.NoError(t, err)
	assert.Equal(t, "how-to-train-your-dragon", article.Slug)
	assert.Equal(t, "jake", article.Author)
	assert.Equal(t, "u-1", article.AuthorID)
	assert.Equal(t, []string{"dragons", "training"}, article.Tags)

	_, err = svc.Create(ctx, author, CreateArticleInput{Title: "How to Train Your Dragon"})
	assert.ErrorIs(t, err, ErrSlugExists)

	custom, err := svc.Create(ctx, author, CreateArticleInput{Title: "Dragons", Slug: "My Custom Slug"})
	require.NoError(t, err)
	assert.Equal(t, "my-custom-slug", custom.Slug)

	_, err = svc.Create(ctx, author, CreateArticleInput{Title: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := svc.Get(ctx, "my-custom-slug")
	require.NoError(t, err)
	assert.Equal(t, "Dragons", got.Title)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrArticleNotFound)
}
