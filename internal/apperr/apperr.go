// Package apperr defines the error taxonomy shared by the domain packages and
// the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error.
type Kind int

const (
	Internal Kind = iota
	Validation
	InvalidOperation
	Unauthorized
	Forbidden
	NotFound
	Conflict
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case InvalidOperation:
		return "invalid_operation"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

// HTTPStatus maps a Kind to its response status. Every uniqueness violation is
// reported as 409, whatever the endpoint.
func (k Kind) HTTPStatus() int {
	switch k {
	case Validation, InvalidOperation:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error carrying a message safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies err. The message is what clients see; err is kept for logs.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NewValidation(message string) *Error       { return New(Validation, message) }
func NewInvalidOperation(message string) *Error { return New(InvalidOperation, message) }
func NewUnauthorized(message string) *Error     { return New(Unauthorized, message) }
func NewForbidden(message string) *Error        { return New(Forbidden, message) }
func NewNotFound(message string) *Error         { return New(NotFound, message) }
func NewConflict(message string) *Error         { return New(Conflict, message) }

// KindOf returns the Kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
