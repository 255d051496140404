package httperr

import (
	"errors"
	"net/http"
)

// Kind groups business errors so clients can tell "log in again" apart from
// "not permitted" and "try another slot".
type Kind string

const (
	KindValidation     Kind = "validation"
	KindConflict       Kind = "conflict"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not_found"
	KindRateLimited    Kind = "rate_limited"
	KindIntegrity      Kind = "integrity"
	KindInternal       Kind = "internal"
)

type BusinessError struct {
	Kind    Kind
	Code    string
	Message string
	Status  int
}

func (e BusinessError) Error() string {
	return e.Code
}

// HTTPStatus returns the explicit status when one was set, otherwise the
// default for the error kind.
func (e BusinessError) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return StatusFor(e.Kind)
}

// Is matches on code so wrapped copies of a sentinel still compare equal.
func (e BusinessError) Is(target error) bool {
	var be BusinessError
	if !errors.As(target, &be) {
		return false
	}
	return be.Code == e.Code
}

func New(kind Kind, code, message string) BusinessError {
	return BusinessError{Kind: kind, Code: code, Message: message}
}

func (e BusinessError) WithStatus(status int) BusinessError {
	e.Status = status
	return e
}

func (e BusinessError) WithMessage(message string) BusinessError {
	e.Message = message
	return e
}

func Validation(code, message string) BusinessError {
	return New(KindValidation, code, message)
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func AsBusiness(err error) (BusinessError, bool) {
	var be BusinessError
	ok := errors.As(err, &be)
	return be, ok
}

func StatusFor(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
