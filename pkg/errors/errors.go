package chat_errors

import "errors"

// Error taxonomy for the messaging engine. Handlers map these onto HTTP
// statuses; repositories translate storage errors into them so callers never
// see driver-level failures.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrAlreadyExists = errors.New("already exists")

	// ErrDeliveryFailed marks a realtime fanout failure. It is logged and
	// swallowed; the durable mutation that triggered it already succeeded and
	// must not be blocked or rolled back.
	ErrDeliveryFailed = errors.New("delivery failed")
)
