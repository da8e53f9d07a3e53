// Package server provides the HTTP JSON API for the job application tracker.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/jobtrack/internal/auth"
	"github.com/jonathan/jobtrack/internal/form"
	"github.com/jonathan/jobtrack/internal/listing"
	"github.com/jonathan/jobtrack/internal/store"
)

// ErrBadRequest indicates a request that could not be decoded or addressed.
type ErrBadRequest struct {
	Message string
}

func (e *ErrBadRequest) Error() string {
	return e.Message
}

// ErrInvalidID indicates a path id that is not a positive integer.
type ErrInvalidID struct {
	Value string
}

func (e *ErrInvalidID) Error() string {
	return fmt.Sprintf("invalid application id: %q", e.Value)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	var (
		notFound   *store.ErrRecordNotFound
		validation *form.ValidationError
		param      *listing.ParamError
		badRequest *ErrBadRequest
		invalidID  *ErrInvalidID
		noSession  *auth.ErrSessionNotFound
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &param), errors.As(err, &badRequest), errors.As(err, &invalidID):
		return http.StatusBadRequest
	case errors.As(err, &noSession):
		return http.StatusUnauthorized
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func newErrorBody(err error, status int) errorBody {
	if status == http.StatusInternalServerError {
		return errorBody{Error: "internal server error"}
	}
	body := errorBody{Error: err.Error()}
	var validation *form.ValidationError
	if errors.As(err, &validation) {
		body.Error = "validation failed"
		body.Fields = validation.Fields
	}
	return body
}
