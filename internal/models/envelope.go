package models

// Envelope is the uniform result of every public operation.
// Result is omitted on failure; Error and Details are omitted on success.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Result  T      `json:"result,omitzero"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

// Ok wraps a successful result.
func Ok[T any](result T) Envelope[T] {
	return Envelope[T]{Success: true, Code: 200, Result: result}
}

// Fail builds a failed envelope. details is usually the cause's message and may be empty.
func Fail[T any](code int, message, details string) Envelope[T] {
	return Envelope[T]{Success: false, Code: code, Error: message, Details: details}
}
