package httpdto

import (
	"errors"
	"net/http"

	chat_errors "pulsechat/pkg/errors"
)

// StatusForError maps the service sentinel errors onto an HTTP status and a
// stable machine-readable code.
func StatusForError(err error) (int, string) {
	switch {
	case errors.Is(err, chat_errors.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, chat_errors.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, chat_errors.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, chat_errors.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, chat_errors.ErrAlreadyExists):
		return http.StatusConflict, "ALREADY_EXISTS"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
