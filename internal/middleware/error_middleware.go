package middleware

import (
	"net/http"

	"pulsechat/internal/transport/httpdto"
	"pulsechat/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler logs errors the handlers attached to the context and writes a
// response for any handler that recorded an error without responding itself.
// Errors outside the sentinel taxonomy never reach the client verbatim.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, code := httpdto.StatusForError(err)
		if l != nil && status >= http.StatusInternalServerError {
			l.ErrorfCtx(c.Request.Context(), "request error: %s", err.Error())
		}
		if c.Writer.Written() {
			return
		}

		msg := err.Error()
		if status >= http.StatusInternalServerError {
			msg = "internal error"
		}
		c.JSON(status, httpdto.NewErrorResponse(msg, code))
	}
}
