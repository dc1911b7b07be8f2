package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"conduit-api/internal/app"
	"conduit-api/internal/metrics"
	"conduit-api/internal/model"
	"conduit-api/internal/transport/http/middleware"
	"conduit-api/internal/transport/http/response"
)

type UserHandler struct {
	authService *app.AuthService
	metrics     *metrics.Metrics
	log         *slog.Logger
}

type RegisterRequest struct {
	User *struct {
		Username string `json:"username" binding:"required,min=2,max=64"`
		Email    string `json:"email" binding:"required,email,max=128"`
		Password string `json:"password" binding:"required,min=8,max=128"`
	} `json:"user" binding:"required"`
}

type LoginRequest struct {
	User *struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	} `json:"user" binding:"required"`
}

type UpdateUserRequest struct {
	User *struct {
		Username string `json:"username" binding:"omitempty,min=2,max=64"`
		Email    string `json:"email" binding:"omitempty,email,max=128"`
		Password string `json:"password" binding:"omitempty,min=8,max=128"`
		Bio      string `json:"bio" binding:"max=4096"`
		Image    string `json:"image" binding:"omitempty,max=512"`
	} `json:"user" binding:"required"`
}

type userEnvelope struct {
	User model.Profile `json:"user"`
}

func NewUserHandler(authService *app.AuthService, m *metrics.Metrics, log *slog.Logger) *UserHandler {
	return &UserHandler{
		authService: authService,
		metrics:     m,
		log:         log,
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid data", err.Error())
		return
	}

	result, err := h.authService.Register(c.Request.Context(), app.RegisterInput{
		Username: req.User.Username,
		Email:    req.User.Email,
		Password: req.User.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "Invalid data", err.Error())
		case errors.Is(err, app.ErrEmailExists):
			response.Error(c, http.StatusConflict, "User already exists", response.ErrConflict)
		default:
			h.internalError(c, "register failed", err)
		}
		return
	}

	c.JSON(http.StatusCreated, withToken(result))
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid data", err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		Email:    req.User.Email,
		Password: req.User.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "Invalid data", err.Error())
		case errors.Is(err, app.ErrInvalidCredential):
			response.Error(c, http.StatusNotFound, "Error fetching auth token!, invalid email or password", response.ErrUnauthorized)
		case errors.Is(err, app.ErrAccountDisabled):
			response.Error(c, http.StatusForbidden, "account disabled", response.ErrForbidden)
		default:
			h.internalError(c, "login failed", err)
		}
		return
	}

	h.metrics.RecordNonceChange(metrics.CauseLogin)
	c.JSON(http.StatusOK, withToken(result))
}

func (h *UserHandler) Current(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Invalid Authentication token!", response.ErrUnauthorized)
		return
	}

	profile := identity.Profile
	profile.Token = identity.Token
	c.JSON(http.StatusOK, userEnvelope{User: profile})
}

func (h *UserHandler) Update(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Invalid Authentication token!", response.ErrUnauthorized)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "failed to update account", err.Error())
		return
	}

	result, err := h.authService.UpdateProfile(c.Request.Context(), identity, app.UpdateInput{
		Username: req.User.Username,
		Email:    req.User.Email,
		Password: req.User.Password,
		Bio:      req.User.Bio,
		Image:    req.User.Image,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrEmailExists):
			response.Error(c, http.StatusConflict, "failed to update account", response.ErrConflict)
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrUserNotFound):
			response.Error(c, http.StatusBadRequest, "failed to update account", err.Error())
		default:
			h.internalError(c, "failed to update account", err)
		}
		return
	}

	c.JSON(http.StatusCreated, withToken(result))
}

func (h *UserHandler) Disable(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Invalid Authentication token!", response.ErrUnauthorized)
		return
	}

	if err := h.authService.Disable(c.Request.Context(), identity.Email); err != nil {
		if errors.Is(err, app.ErrUserNotFound) {
			response.Error(c, http.StatusBadRequest, "failed to disable account", err.Error())
			return
		}
		h.internalError(c, "failed to disable account", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Logoff(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Invalid Authentication token!", response.ErrUnauthorized)
		return
	}

	if _, err := h.authService.Logoff(c.Request.Context(), identity.Email); err != nil {
		if errors.Is(err, app.ErrUserNotFound) {
			response.Error(c, http.StatusBadRequest, "failed to log off", err.Error())
			return
		}
		h.internalError(c, "failed to log off", err)
		return
	}

	h.metrics.RecordNonceChange(metrics.CauseLogoff)
	response.Message(c, http.StatusCreated, "successfully logged off", nil)
}

func (h *UserHandler) internalError(c *gin.Context, message string, err error) {
	h.log.ErrorContext(c.Request.Context(), message, "error", err)
	response.Error(c, http.StatusInternalServerError, "Something went wrong", err.Error())
}

func withToken(result *app.AuthResult) userEnvelope {
	profile := result.User.Profile()
	profile.Token = result.Token
	return userEnvelope{User: profile}
}
