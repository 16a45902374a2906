package resp

import (
	"errors"
	"net/http"

	"github.com/ncobase/recruit/ecode"
)

// BadRequest indicates a bad request.
func BadRequest(message string, data ...any) *Exception {
	return newResponse(http.StatusBadRequest, ecode.RequestErr, message, data...)
}

// UnAuthorized indicates that the request is unauthorized.
func UnAuthorized(message string, data ...any) *Exception {
	return newResponse(http.StatusUnauthorized, ecode.Unauthorized, message, data...)
}

// Forbidden indicates access is forbidden.
func Forbidden(message string, data ...any) *Exception {
	return newResponse(http.StatusForbidden, ecode.AccessDenied, message, data...)
}

// NotFound indicates that the requested resource is not found.
func NotFound(message string, data ...any) *Exception {
	return newResponse(http.StatusNotFound, ecode.NothingFound, message, data...)
}

// Gone indicates that the resource existed but its validity window has passed.
func Gone(message string, data ...any) *Exception {
	return newResponse(http.StatusGone, ecode.ResourceExpired, message, data...)
}

// TooManyRequests indicates the caller exceeded its rate limit.
func TooManyRequests(message string, data ...any) *Exception {
	return newResponse(http.StatusTooManyRequests, ecode.TooManyRequests, message, data...)
}

// InternalServer indicates a server error.
func InternalServer(message string, data ...any) *Exception {
	return newResponse(http.StatusInternalServerError, ecode.ServerErr, message, data...)
}

// FromError converts an error into an Exception. Domain errors keep their
// code, message and data; anything else becomes an opaque server error.
func FromError(err error) *Exception {
	if err == nil {
		return nil
	}
	var e *ecode.Error
	if !errors.As(err, &e) {
		return InternalServer(ecode.Text(ecode.ServerErr))
	}
	msg := e.Message
	if e.Code == ecode.ServerErr {
		msg = ecode.Text(ecode.ServerErr)
	}
	if e.Data != nil {
		return newResponse(e.HTTPStatus(), e.Code, msg, e.Data)
	}
	return newResponse(e.HTTPStatus(), e.Code, msg)
}
