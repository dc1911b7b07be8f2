package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"conduit-api/internal/app"
	"conduit-api/internal/metrics"
	"conduit-api/internal/transport/http/response"
)

type AdminHandler struct {
	authService  *app.AuthService
	auditService *app.AuditService
	metrics      *metrics.Metrics
	log          *slog.Logger
}

type ResetNonceRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func NewAdminHandler(authService *app.AuthService, auditService *app.AuditService, m *metrics.Metrics, log *slog.Logger) *AdminHandler {
	return &AdminHandler{
		authService:  authService,
		auditService: auditService,
		metrics:      m,
		log:          log,
	}
}

func (h *AdminHandler) ResetNonce(c *gin.Context) {
	var req ResetNonceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid data", err.Error())
		return
	}

	if err := h.authService.ResetNonce(c.Request.Context(), req.Email); err != nil {
		h.writeError(c, "reset nonce failed", err)
		return
	}

	h.metrics.RecordNonceChange(metrics.CauseReset)
	response.Message(c, http.StatusCreated, "Successfully reset nonce", nil)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.authService.DeleteUser(c.Request.Context(), c.Param("email")); err != nil {
		h.writeError(c, "delete user failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) Events(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		response.Error(c, http.StatusBadRequest, "Invalid data", "limit must be a positive integer")
		return
	}

	events, err := h.auditService.List(c.Request.Context(), c.Param("email"), limit)
	if err != nil {
		h.writeError(c, "list events failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *AdminHandler) writeError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, app.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "user not found", response.ErrNotFound)
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, "Invalid data", err.Error())
	default:
		h.log.ErrorContext(c.Request.Context(), message, "error", err)
		response.Error(c, http.StatusInternalServerError, "Something went wrong", err.Error())
	}
}
