package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"conduit-api/internal/transport/http/response"
)

const HeaderAdminKey = "X-Admin-Key"

func AdminKey(key string) gin.HandlerFunc {
	expected := []byte(key)
	return func(c *gin.Context) {
		given := []byte(c.GetHeader(HeaderAdminKey))
		if len(expected) == 0 || subtle.ConstantTimeCompare(given, expected) != 1 {
			response.Abort(c, http.StatusForbidden, "Forbidden", response.ErrForbidden)
			return
		}
		c.Next()
	}
}
