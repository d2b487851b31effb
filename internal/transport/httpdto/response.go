package httpdto

// Response is the envelope every HTTP endpoint returns. Data is set on
// success; Error carries a human-readable message and Code a stable
// machine-readable identifier on failure.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// NewSuccessResponse wraps a payload in a successful envelope.
func NewSuccessResponse[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: data}
}

// NewErrorResponse builds a failure envelope with no payload.
func NewErrorResponse(err, code string) Response[any] {
	return Response[any]{Success: false, Error: err, Code: code}
}
