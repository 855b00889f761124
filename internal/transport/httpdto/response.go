package httpdto

// Response is the envelope every endpoint writes. Success responses carry
// Data; failures carry a human-readable Error and a stable Code that clients
// can branch on.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func NewSuccessResponse[T any](data T) Response[T] {
	return Response[T]{
		Success: true,
		Data:    data,
	}
}

func NewErrorResponse(err string, code string) Response[any] {
	return Response[any]{
		Success: false,
		Error:   err,
		Code:    code,
	}
}
