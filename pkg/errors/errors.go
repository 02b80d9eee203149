// Package errors is the back-office error model. Every failure that reaches
// the HTTP layer carries a Code, and the Code alone decides the status,
// public message and whether details are shown to the client.
package errors

import (
	stdErrors "errors"
	"net/http"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeInvariant     Code = "INVARIANT_VIOLATION"
	CodeInsufficient  Code = "INSUFFICIENT_STOCK"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	// CodeDependency covers persistence and cache failures.
	CodeDependency Code = "DEPENDENCY_ERROR"
)

type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

func hidden(status int, msg string) Metadata {
	return Metadata{HTTPStatus: status, PublicMessage: msg}
}

func detailed(status int, msg string) Metadata {
	return Metadata{HTTPStatus: status, PublicMessage: msg, DetailsAllowed: true}
}

var registry = map[Code]Metadata{
	CodeValidation:    detailed(http.StatusBadRequest, "validation failed"),
	CodeUnauthorized:  hidden(http.StatusUnauthorized, "authentication required"),
	CodeForbidden:     hidden(http.StatusForbidden, "access denied"),
	CodeNotFound:      hidden(http.StatusNotFound, "resource not found"),
	CodeConflict:      hidden(http.StatusConflict, "conflict detected"),
	CodeStateConflict: detailed(http.StatusUnprocessableEntity, "state transition disallowed"),
	CodeInvariant:     detailed(http.StatusUnprocessableEntity, "operation violates a catalog invariant"),
	CodeInsufficient:  detailed(http.StatusConflict, "insufficient stock"),
	CodeIdempotency:   detailed(http.StatusConflict, "idempotency key reused"),
	CodeRateLimit:     hidden(http.StatusTooManyRequests, "rate limit exceeded"),
	CodeInternal:      {HTTPStatus: http.StatusInternalServerError, Retryable: true, PublicMessage: "internal server error"},
	CodeDependency:    hidden(http.StatusServiceUnavailable, "dependency unavailable"),
}

// MetadataFor treats unknown codes as CodeInternal.
func MetadataFor(code Code) Metadata {
	if meta, ok := registry[code]; ok {
		return meta
	}
	return registry[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap is New when err is nil.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
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

// WithDetails sets the client-visible details in place and returns e.
func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

// Error includes the cause so log lines show the whole story; clients only
// ever see Message.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	text := string(e.code) + ": " + e.message
	if e.cause != nil {
		text += ": " + e.cause.Error()
	}
	return text
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// IsCode reports whether the outermost *Error in err's chain carries code.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
