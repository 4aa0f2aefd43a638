// Package errors provides structured errors with HTTP status mapping for
// the REST handlers.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Type categorizes an error for status mapping and metrics.
type Type string

const (
	TypeValidation  Type = "validation"
	TypeNotFound    Type = "not_found"
	TypeInternal    Type = "internal"
	TypeUnavailable Type = "unavailable"
)

// Error carries a category, a client-safe message, and an optional cause.
type Error struct {
	Type    Type
	Message string
	Cause   error
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the error type to a response status code.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WithField adds a context field for logging (chainable). Context fields
// are never sent to clients.
func (e *Error) WithField(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func ValidationError(message string) *Error {
	return &Error{Type: TypeValidation, Message: message}
}

func NotFoundError(message string) *Error {
	return &Error{Type: TypeNotFound, Message: message}
}

func InternalError(message string, cause error) *Error {
	return &Error{Type: TypeInternal, Message: message, Cause: cause}
}

func UnavailableError(message string, cause error) *Error {
	return &Error{Type: TypeUnavailable, Message: message, Cause: cause}
}

// Response is the JSON body sent to clients on failure.
type Response struct {
	Error string `json:"error"`
}

func (e *Error) ToResponse() Response {
	return Response{Error: e.Message}
}

// AsStructured converts any error into an *Error, wrapping unknown errors
// as internal so their details never leak to clients.
func AsStructured(err error) *Error {
	if err == nil {
		return nil
	}
	var structured *Error
	if errors.As(err, &structured) {
		return structured
	}
	return InternalError("internal server error", err)
}
