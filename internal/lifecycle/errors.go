package lifecycle

import (
	"errors"
	"fmt"

	"github.com/erazemk/foodrescue/internal/model"
)

// ErrNotFound is returned when no post has the requested id.
var ErrNotFound = errors.New("post not found")

// ErrCodeMismatch is returned when a presented handover code is wrong.
var ErrCodeMismatch = errors.New("code mismatch: please verify with the other party")

// ValidationError reports bad input caught before any state change.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvalidStateError reports an operation attempted from a status that does
// not permit it.
type InvalidStateError struct {
	Op       string
	Current  model.Status
	Required model.Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s: post is %q, expected %q", e.Op, e.Current, e.Required)
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsInvalidState reports whether err is an *InvalidStateError.
func IsInvalidState(err error) bool {
	var s *InvalidStateError
	return errors.As(err, &s)
}
