package roster

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplateNotFound is returned when no template has the requested ID.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrForbidden is returned when the caller does not own the template.
	ErrForbidden = errors.New("template belongs to another user")

	// ErrInvalidTemplate is returned when a template fails Validate.
	ErrInvalidTemplate = errors.New("invalid template")

	// ErrDuplicateTemplate is returned by Create when the ID is taken.
	ErrDuplicateTemplate = errors.New("template already exists")
)

func invalidTemplate(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidTemplate, msg)
}

// IsNotFound returns true if the error indicates a missing template.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTemplate) ||
		errors.Is(err, ErrDuplicateTemplate)
}
