package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"conduit-api/internal/app"
	"conduit-api/internal/transport/http/middleware"
	"conduit-api/internal/transport/http/response"
)

type ArticleHandler struct {
	articleService *app.ArticleService
	log            *slog.Logger
}

type CreateArticleRequest struct {
	Slug        string   `json:"slug" binding:"max=255"`
	Title       string   `json:"title" binding:"required,max=255"`
	Description string   `json:"description"`
	Body        string   `json:"body"`
	TagList     []string `json:"tagList" binding:"max=32,dive,max=64"`
}

func NewArticleHandler(articleService *app.ArticleService, log *slog.Logger) *ArticleHandler {
	return &ArticleHandler{articleService: articleService, log: log}
}

func (h *ArticleHandler) Create(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Invalid Authentication token!", response.ErrUnauthorized)
		return
	}

	var req CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid data", err.Error())
		return
	}

	article, err := h.articleService.Create(c.Request.Context(), identity, app.CreateArticleInput{
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		Body:        req.Body,
		Tags:        req.TagList,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "Invalid data", err.Error())
		case errors.Is(err, app.ErrSlugExists):
			response.Error(c, http.StatusConflict, "article already exists", response.ErrConflict)
		default:
			h.log.ErrorContext(c.Request.Context(), "create article failed", "error", err)
			response.Error(c, http.StatusInternalServerError, "Something went wrong", err.Error())
		}
		return
	}

	response.Message(c, http.StatusCreated, "Successfully created new article", article)
}

func (h *ArticleHandler) Get(c *gin.Context) {
	article, err := h.articleService.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, app.ErrArticleNotFound) {
			response.Error(c, http.StatusNotFound, "article not found", response.ErrNotFound)
			return
		}
		h.log.ErrorContext(c.Request.Context(), "get article failed", "error", err)
		response.Error(c, http.StatusInternalServerError, "Something went wrong", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"article": article})
}
