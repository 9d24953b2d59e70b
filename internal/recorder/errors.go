package recorder

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Delete when no record has the given id.
var ErrNotFound = errors.New("generation not found")

// Error represents a failed store operation.
type Error struct {
	Op    string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("recorder %s failed: %v", e.Op, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
