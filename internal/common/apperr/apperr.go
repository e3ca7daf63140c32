package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation Kind = "validation_error"
	KindAuth       Kind = "auth_error"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindUpstream   Kind = "upstream_unavailable"
	KindChaos      Kind = "chaos_injected"
	KindInternal   Kind = "internal_error"
)

// Error is the error type that crosses the HTTP boundary. Err is kept for logs only.
type Error struct {
	Kind    Kind
	Status  int
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

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: msg}
}

func Unprocessable(msg string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusUnprocessableEntity, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindAuth, Status: http.StatusUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindAuth, Status: http.StatusForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Status: http.StatusConflict, Message: msg}
}

func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Status: http.StatusServiceUnavailable, Message: msg, Err: err}
}

func Chaos(msg string) *Error {
	return &Error{Kind: KindChaos, Status: http.StatusServiceUnavailable, Message: msg}
}

// FromStatus rebuilds an error reported by a downstream service so callers see the same category and code.
func FromStatus(status int, msg string) *Error {
	switch {
	case status == http.StatusBadRequest:
		return Validation(msg)
	case status == http.StatusUnprocessableEntity:
		return Unprocessable(msg)
	case status == http.StatusUnauthorized:
		return Unauthorized(msg)
	case status == http.StatusForbidden:
		return Forbidden(msg)
	case status == http.StatusNotFound:
		return NotFound(msg)
	case status == http.StatusConflict:
		return Conflict(msg)
	default:
		return Upstream(msg, fmt.Errorf("downstream status %d", status))
	}
}

func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func IsKind(err error, k Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == k
}

// StatusOf maps any error to an HTTP status; unknown errors are 500.
func StatusOf(err error) int {
	if e, ok := As(err); ok {
		return e.Status
	}
	return http.StatusInternalServerError
}
