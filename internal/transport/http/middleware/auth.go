package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"conduit-api/internal/app"
	"conduit-api/internal/metrics"
	"conduit-api/internal/pkg/jwtutil"
	"conduit-api/internal/transport/http/response"
)

const ContextIdentityKey = "identity"

// AuthGate authenticates the bearer token on every request and stores the
// resulting *app.Identity in the gin context.
func AuthGate(auth *app.AuthService, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))

		identity, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			status, message, reason := classifyGateError(err)
			m.RecordGateDecision(metrics.OutcomeRejected, reason)

			errText := response.ErrUnauthorized
			switch status {
			case http.StatusForbidden:
				errText = response.ErrForbidden
			case http.StatusInternalServerError:
				errText = err.Error()
			}
			response.Abort(c, status, message, errText)
			return
		}

		m.RecordGateDecision(metrics.OutcomeAuthorized, "")
		c.Set(ContextIdentityKey, identity)
		c.Next()
	}
}

// IdentityFrom returns the identity stored by AuthGate.
func IdentityFrom(c *gin.Context) (*app.Identity, bool) {
	value, exists := c.Get(ContextIdentityKey)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*app.Identity)
	return identity, ok && identity != nil
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func classifyGateError(err error) (status int, message, reason string) {
	switch {
	case errors.Is(err, app.ErrTokenMissing):
		return http.StatusUnauthorized, "Authentication Token is missing!", "token_missing"
	case errors.Is(err, jwtutil.ErrTokenExpired):
		return http.StatusUnauthorized, err.Error(), "token_expired"
	case errors.Is(err, jwtutil.ErrInvalidToken):
		return http.StatusUnauthorized, err.Error(), "invalid_token"
	case errors.Is(err, app.ErrStaleToken):
		return http.StatusUnauthorized, "stale token", "stale_token"
	case errors.Is(err, app.ErrUserNotFound):
		return http.StatusUnauthorized, "Invalid Authentication token!", "unknown_user"
	case errors.Is(err, app.ErrAccountDisabled):
		return http.StatusForbidden, "account disabled", "account_disabled"
	default:
		return http.StatusInternalServerError, "Something went wrong", "store_error"
	}
}
