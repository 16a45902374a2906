package ecode

import (
	"errors"
	"fmt"
)

// Error is a domain error carrying a stable business code.
type Error struct {
	Code    int
	Message string
	// Data is optional structured detail rendered with the error.
	Data any
	Err  error
}

// New creates an error with code and formatted message.
func New(code int, format string, args ...any) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	if msg == "" {
		msg = Text(code)
	}
	return &Error{Code: code, Message: msg}
}

// Wrap creates an error with code that wraps err.
func Wrap(code int, err error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Err = err
	return e
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithData attaches detail to the error.
func (e *Error) WithData(data any) *Error {
	e.Data = data
	return e
}

// HTTPStatus returns the HTTP status for the error code.
func (e *Error) HTTPStatus() int { return ToHTTPStatus(e.Code) }

// CodeOf returns the business code of err, ServerErr for foreign errors.
func CodeOf(err error) int {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ServerErr
}

// IsCode reports whether err carries code.
func IsCode(err error, code int) bool {
	return err != nil && CodeOf(err) == code
}

// Validationf returns a validation error.
func Validationf(format string, args ...any) *Error { return New(ParamErr, format, args...) }

// Unauthenticatedf returns an authentication error.
func Unauthenticatedf(format string, args ...any) *Error { return New(NoLogin, format, args...) }

// Forbiddenf returns an authorization error.
func Forbiddenf(format string, args ...any) *Error { return New(AccessDenied, format, args...) }

// NotFoundf returns a missing resource error.
func NotFoundf(format string, args ...any) *Error { return New(NothingFound, format, args...) }

// StateConflictf returns an illegal transition or lost race error.
func StateConflictf(format string, args ...any) *Error { return New(StateConflict, format, args...) }

// PaymentRequiredf returns an error for operations gated on a successful payment.
func PaymentRequiredf(format string, args ...any) *Error {
	return New(PaymentRequired, format, args...)
}

// Expiredf returns an error for resources past their validity window.
func Expiredf(format string, args ...any) *Error { return New(ResourceExpired, format, args...) }

// Upstream wraps a failure of an external collaborator.
func Upstream(err error, format string, args ...any) *Error {
	return Wrap(UpstreamErr, err, format, args...)
}

// Internal wraps an unexpected failure.
func Internal(err error, format string, args ...any) *Error {
	return Wrap(ServerErr, err, format, args...)
}
