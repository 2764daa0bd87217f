package core

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable is wrapped by row sources when the table cannot be
	// fetched or parsed.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrUnauthorized covers bad credentials and missing, invalid or expired tokens.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError reports a malformed or missing request input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError returns a *ValidationError for field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
