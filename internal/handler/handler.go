package handler

import (
	"net/http"

	"pulsechat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// respondError writes the mapped status for a service error and records the
// original on the gin context so the error middleware can log it. Errors
// outside the sentinel taxonomy are storage or driver failures; their text
// stays in the server log and the client only sees a generic message.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	status, code := httpdto.StatusForError(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(status, httpdto.NewErrorResponse(msg, code))
}
