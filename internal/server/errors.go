// Package server provides the HTTP REST API for the resume editor.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-editor/internal/analysis"
	"github.com/jonathan/resume-editor/internal/editor"
	"github.com/jonathan/resume-editor/internal/extraction"
	"github.com/jonathan/resume-editor/internal/fetch"
	"github.com/jonathan/resume-editor/internal/rendering"
	"github.com/jonathan/resume-editor/internal/sections"
	"github.com/jonathan/resume-editor/internal/types"
)

// ErrNotFound indicates a resource that does not exist or is not visible to the caller
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnauthorized indicates an endpoint that needs a signed-in user
type ErrUnauthorized struct{}

func (e *ErrUnauthorized) Error() string {
	return "authentication required"
}

// ErrUnavailable indicates a feature whose backing service is not configured
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not available on this server", e.Feature)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound     *ErrNotFound
		reqErr       *ErrValidation
		typesErr     *types.ValidationError
		analysisErr  *analysis.ValidationError
		fieldErrs    validator.ValidationErrors
		unauthorized *ErrUnauthorized
		unavailable  *ErrUnavailable
		unsupported  *extraction.UnsupportedFormatError
		emptyDoc     *extraction.EmptyDocumentError
		extractErr   *extraction.ExtractError
		apiErr       *analysis.APICallError
		parseErr     *analysis.ParseError
		fetchErr     *fetch.Error
		renderErr    *rendering.RenderError
	)

	switch {
	case errors.As(err, &notFound), errors.Is(err, editor.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.As(err, &reqErr), errors.As(err, &typesErr), errors.As(err, &analysisErr),
		errors.As(err, &fieldErrs), errors.Is(err, editor.ErrIndexOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, sections.ErrProtectedSection), errors.Is(err, editor.ErrAlreadyApplied),
		errors.Is(err, editor.ErrReanalysisInProgress), errors.Is(err, editor.ErrNoAnalysis):
		return http.StatusConflict
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &emptyDoc), errors.As(err, &extractErr), errors.As(err, &renderErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &apiErr), errors.As(err, &parseErr), errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
