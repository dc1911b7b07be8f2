package response

import "github.com/gin-gonic/gin"

const (
	ErrBadRequest   = "Bad request"
	ErrUnauthorized = "Unauthorized"
	ErrForbidden    = "Forbidden"
	ErrNotFound     = "Not Found"
	ErrConflict     = "Conflict"
	ErrInternal     = "Internal Server Error"
)

// Envelope is the body of every message-style response. Error is omitted
// on success.
type Envelope struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

func Message(c *gin.Context, httpStatus int, message string, data interface{}) {
	c.JSON(httpStatus, Envelope{
		Message: message,
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus int, message, errText string) {
	c.JSON(httpStatus, Envelope{
		Message: message,
		Data:    nil,
		Error:   errText,
	})
}

// Abort writes an error envelope and stops the handler chain.
func Abort(c *gin.Context, httpStatus int, message, errText string) {
	Error(c, httpStatus, message, errText)
	c.Abort()
}
