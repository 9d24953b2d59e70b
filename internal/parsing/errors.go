package parsing

import (
	"fmt"
	"strings"
)

// MalformedResponseError is returned when no strategy finds a structured record in a model response.
type MalformedResponseError struct {
	Message string
	// Tried lists the strategy names attempted, in order.
	Tried []string
	// Snippet is the head of the offending response, for logs.
	Snippet string
}

func (e *MalformedResponseError) Error() string {
	if len(e.Tried) > 0 {
		return fmt.Sprintf("malformed response: %s (tried %s)", e.Message, strings.Join(e.Tried, ", "))
	}
	return fmt.Sprintf("malformed response: %s", e.Message)
}

// DecodeError represents a record that was found but could not be decoded into the target type.
type DecodeError struct {
	Message string
	Cause   error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("decode error: %s", e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
