package domain

import "errors"

// Expected result variants. Not-found and not-modified are frequent and
// carry no diagnostic payload; the handler layer maps them to 204 and 304.
var (
	ErrNotFound    = errors.New("not found")
	ErrNotModified = errors.New("not modified")
)

// ValidationError marks a malformed or incomplete request body.
type ValidationError struct {
	Reason string
}

func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
