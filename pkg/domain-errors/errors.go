// Package domainerrors provides coded errors shared across layers. Services
// return these so transports can map them onto wire responses without string
// matching, and callers can branch on the code rather than the message.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies why an operation failed.
type Code string

const (
	// Auth flow codes.
	CodeInvalidCredentials Code = "invalid_credentials"
	CodeInvalidCode        Code = "invalid_code"
	CodeAlreadyInProgress  Code = "already_in_progress"
	CodeInvalidRole        Code = "invalid_role"

	// Gateway transport codes.
	CodeNetwork           Code = "network"
	CodeServerRejected    Code = "server_rejected"
	CodeMalformedResponse Code = "malformed_response"

	// Wizard codes.
	CodeValidationFailed Code = "validation_failed"

	// Server-side codes used by the dev backend wire surface.
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeConflict     Code = "conflict"
	CodeNotFound     Code = "not_found"
	CodeInternal     Code = "internal"
)

// Error carries a code, a human-readable message, and optionally the
// underlying cause and the HTTP status observed at the gateway boundary.
type Error struct {
	Code    Code
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds an error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// WithStatus returns a copy of the error annotated with an HTTP status.
func (e *Error) WithStatus(status int) *Error {
	clone := *e
	clone.Status = status
	return &clone
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf extracts the code from an error chain, or CodeInternal if none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the human-readable message, falling back to Error().
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// HTTPStatus maps a code onto the status the dev backend responds with.
func HTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidationFailed, CodeInvalidCode, CodeInvalidRole:
		return http.StatusBadRequest
	case CodeInvalidCredentials, CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
