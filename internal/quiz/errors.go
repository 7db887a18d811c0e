package quiz

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidState is returned when an operation is not allowed in the
	// session's current state.
	ErrInvalidState = errors.New("invalid session state")

	// ErrSubmitInFlight rejects a Submit while another is awaiting grading.
	ErrSubmitInFlight = errors.New("submit already in flight")

	// ErrStaleResponse reports a collaborator response that arrived after
	// the session moved on. The response was discarded.
	ErrStaleResponse = errors.New("stale response discarded")

	// ErrMalformed reports a quiz or result that does not have the shape the
	// session relies on.
	ErrMalformed = errors.New("malformed quiz payload")
)

// ValidationError is a caller precondition violation. It is always raised
// before any collaborator call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
