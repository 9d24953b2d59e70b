// Package server provides the HTTP REST API for the resume tailor.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-tailor/internal/extract"
	"github.com/jonathan/resume-tailor/internal/fetch"
	"github.com/jonathan/resume-tailor/internal/recorder"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/workflow"
)

// ErrSessionNotFound indicates no session is held under the ID
type ErrSessionNotFound struct {
	ID string
}

func (e *ErrSessionNotFound) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}

// ErrSessionBusy indicates a generation is already running for the session
type ErrSessionBusy struct {
	ID string
}

func (e *ErrSessionBusy) Error() string {
	return fmt.Sprintf("session %s is already generating", e.ID)
}

// ErrGenerationNotFound indicates no generation record has the ID
type ErrGenerationNotFound struct {
	ID int64
}

func (e *ErrGenerationNotFound) Error() string {
	return fmt.Sprintf("generation not found: %d", e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound      *ErrSessionNotFound
		busy          *ErrSessionBusy
		missing       *ErrGenerationNotFound
		validation    *ErrValidation
		schemaErr     *schemas.ValidationError
		inputErr      *workflow.InputError
		stateErr      *workflow.StateError
		extractionErr *extract.ExtractionError
		fetchErr      *fetch.Error
	)

	switch {
	case errors.As(err, &notFound), errors.As(err, &missing), errors.Is(err, recorder.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &busy), errors.As(err, &stateErr):
		return http.StatusConflict
	case errors.As(err, &validation), errors.As(err, &schemaErr), errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.As(err, &extractionErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
