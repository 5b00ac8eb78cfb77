package factory

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest marks every rejection made at the boundary.
var ErrInvalidRequest = errors.New("invalid calculation request")

// ValidationError names the offending field with a JSON-path-like label,
// e.g. "employees[2].daysWorked.day3.hours".
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid request: %s", e.Message)
	}
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsClientError reports whether err was caused by the request body.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}
