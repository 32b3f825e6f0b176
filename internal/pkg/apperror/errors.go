// Package apperror holds the error taxonomy shared by the HTTP and realtime boundaries.
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors. Wrap them with New/Wrap so callers can still match with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrMalformed    = errors.New("malformed payload")
	ErrUnsupported  = errors.New("unsupported event type")
	ErrValidation   = errors.New("validation failed")
)

type AppError struct {
	Kind    error
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	if e.Message == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// PublicMessage is safe to show to a peer.
func (e *AppError) PublicMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

func New(kind error, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind error, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *AppError     { return New(ErrNotFound, message) }
func Forbidden(message string) *AppError    { return New(ErrForbidden, message) }
func Unauthorized(message string) *AppError { return New(ErrUnauthorized, message) }
func Validation(message string) *AppError   { return New(ErrValidation, message) }

// Public extracts the peer-facing message from err, or "" when err carries no AppError.
func Public(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.PublicMessage()
	}
	return ""
}
