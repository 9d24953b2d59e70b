package llm

import "fmt"

// InvocationError is returned once the retry budget is exhausted. It wraps the last failure.
type InvocationError struct {
	Message  string
	Attempts int
	Cause    error
}

func (e *InvocationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invocation failed after %d attempt(s): %s: %v", e.Attempts, e.Message, e.Cause)
	}
	return fmt.Sprintf("invocation failed after %d attempt(s): %s", e.Attempts, e.Message)
}

func (e *InvocationError) Unwrap() error {
	return e.Cause
}

// BackendError represents a failed call to a provider API
type BackendError struct {
	Backend    string
	StatusCode int
	Message    string
	Cause      error
}

func (e *BackendError) Error() string {
	prefix := e.Backend
	if e.StatusCode != 0 {
		prefix = fmt.Sprintf("%s (HTTP %d)", e.Backend, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}

// ConfigError represents an invalid backend configuration
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("llm config error: %s", e.Message)
}
