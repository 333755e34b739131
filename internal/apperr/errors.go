// Package apperr is the error taxonomy shared by services and the HTTP layer.
package apperr

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation        Kind = "VALIDATION_ERROR"
	KindUnauthenticated   Kind = "UNAUTHENTICATED"
	KindInvalidCredential Kind = "INVALID_CREDENTIAL"
	KindForbidden         Kind = "FORBIDDEN"
	KindNotFound          Kind = "NOT_FOUND"
	KindDuplicateEmail    Kind = "DUPLICATE_EMAIL"
	KindDuplicatePhone    Kind = "DUPLICATE_PHONE"
	KindRateLimited       Kind = "RATE_LIMITED"
	KindProvider          Kind = "PROVIDER_ERROR"
	KindStore             Kind = "STORE_ERROR"
	KindInternal          Kind = "INTERNAL_ERROR"
)

var statusByKind = map[Kind]int{
	KindValidation:        http.StatusBadRequest,
	KindUnauthenticated:   http.StatusUnauthorized,
	KindInvalidCredential: http.StatusUnauthorized,
	KindForbidden:         http.StatusForbidden,
	KindNotFound:          http.StatusNotFound,
	KindDuplicateEmail:    http.StatusBadRequest,
	KindDuplicatePhone:    http.StatusBadRequest,
	KindRateLimited:       http.StatusTooManyRequests,
	KindProvider:          http.StatusInternalServerError,
	KindStore:             http.StatusInternalServerError,
	KindInternal:          http.StatusInternalServerError,
}

// HTTPStatus returns the response status for k. Unknown kinds map to 500.
func HTTPStatus(k Kind) int {
	if s, ok := statusByKind[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

type Error struct {
	kind    Kind
	message string
	details any
	cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

func Wrap(kind Kind, err error, message string) *Error {
	if err == nil {
		return New(kind, message)
	}
	return &Error{kind: kind, message: message, cause: err}
}

func Validation(message string) *Error { return New(KindValidation, message) }
func NotFound(message string) *Error   { return New(KindNotFound, message) }
func Forbidden(message string) *Error  { return New(KindForbidden, message) }

// Store wraps a persistence failure. The cause's text becomes the public message,
// as upstream failures are reported verbatim without stack traces.
func Store(err error) *Error {
	return Wrap(KindStore, err, err.Error())
}

// Provider wraps an identity provider failure; see Store.
func Provider(err error) *Error {
	return Wrap(KindProvider, err, err.Error())
}

func (e *Error) Kind() Kind {
	if e == nil {
		return KindInternal
	}
	return e.kind
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil && e.cause.Error() != e.message {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsKind reports whether err carries an *Error of kind k anywhere in its chain.
func IsKind(err error, k Kind) bool {
	typed := As(err)
	return typed != nil && typed.kind == k
}
