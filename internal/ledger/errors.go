package ledger

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no live note has the requested id,
// whether it never existed or was deleted.
var ErrNotFound = errors.New("note not found")

// ErrNotAuthorized is returned when the caller lacks the capability an
// operation requires. Reading without a grant, writing with only a read
// grant, and delete/share by a non-owner all land here.
var ErrNotAuthorized = errors.New("not authorized")

// ValidationError reports malformed input. It is always raised before
// any state change, so a failed call leaves the ledger untouched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
