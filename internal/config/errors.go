package config

import (
	"fmt"
	"strings"
)

// FieldError describes one configuration value outside its allowed range.
type FieldError struct {
	Field string
	Rule  string
	Param string
	Value any
}

func (e FieldError) String() string {
	if e.Param != "" {
		return fmt.Sprintf("%s=%v violates %s=%s", e.Field, e.Value, e.Rule, e.Param)
	}
	return fmt.Sprintf("%s=%v violates %s", e.Field, e.Value, e.Rule)
}

// ValidationError lists every invalid configuration value. It is fatal at startup.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("invalid configuration: %s", strings.Join(parts, "; "))
}

// LoadError represents a config file that could not be read or decoded.
type LoadError struct {
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
