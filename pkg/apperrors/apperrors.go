package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application failure. Every failure surfaced by the auth
// layer carries exactly one Kind so handlers can map it to an HTTP status
// without string matching.
type Kind int

const (
	Internal Kind = iota
	Validation
	DuplicateEmail
	MissingCredentials
	InvalidCredentials
	MissingToken
	InvalidToken
	ExpiredToken
	StalePrincipal
	PasswordChanged
	InsufficientRole
	NotFound
	InvalidResetToken
	NotificationFailure
)

var statusByKind = map[Kind]int{
	Internal:            http.StatusInternalServerError,
	Validation:          http.StatusBadRequest,
	DuplicateEmail:      http.StatusBadRequest,
	MissingCredentials:  http.StatusBadRequest,
	InvalidCredentials:  http.StatusUnauthorized,
	MissingToken:        http.StatusUnauthorized,
	InvalidToken:        http.StatusUnauthorized,
	ExpiredToken:        http.StatusUnauthorized,
	StalePrincipal:      http.StatusUnauthorized,
	PasswordChanged:     http.StatusUnauthorized,
	InsufficientRole:    http.StatusForbidden,
	NotFound:            http.StatusNotFound,
	InvalidResetToken:   http.StatusBadRequest,
	NotificationFailure: http.StatusInternalServerError,
}

// Error is an operational error with a stable kind and a caller-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, never shown outside development
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two application errors by kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// Status returns the HTTP status for the error kind.
func (e *Error) Status() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// New builds an application error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an application error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to an application error. The cause is kept for logs
// only; Message stays what the caller sees.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, or Internal if err is not an
// application error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// As is a convenience wrapper around errors.As for *Error.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
