package workflow

import (
	"fmt"

	"github.com/jonathan/resume-tailor/internal/types"
)

// StateError is returned when an operation is called on a run in the wrong state.
type StateError struct {
	Message string
	Status  types.Status
}

func (e *StateError) Error() string {
	return fmt.Sprintf("invalid run state %q: %s", e.Status, e.Message)
}

// InputError represents a run started without its required inputs
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Message)
}

// SessionError represents a session file that could not be read or written
type SessionError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SessionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("session %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("session %s: %s", e.Path, e.Message)
}

func (e *SessionError) Unwrap() error {
	return e.Cause
}
