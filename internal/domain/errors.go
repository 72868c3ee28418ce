package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks caller contract violations.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("not found")
)

// InvalidInputError identifies the field that violated the engine contract.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// InvalidInput builds an *InvalidInputError with a formatted reason.
func InvalidInput(field, format string, args ...any) error {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InvalidField returns the offending field name when err is an InvalidInputError.
func InvalidField(err error) (string, bool) {
	var ie *InvalidInputError
	if errors.As(err, &ie) {
		return ie.Field, true
	}
	return "", false
}
