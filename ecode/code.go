package ecode

import (
	"net/http"
	"sync"
)

// Business codes returned in the response envelope.
const (
	OK = 0

	// authentication / authorization
	NoLogin      = -101
	Unauthorized = -102
	AccessDenied = -103

	// request validation
	RequestErr = -201
	ParamErr   = -202
	SignErr    = -203

	// resources
	NothingFound = -301
	Conflict     = -302

	// business rules
	StateConflict   = -402
	PaymentRequired = -403
	ResourceExpired = -404
	TooManyRequests = -405

	// server
	ServerErr          = -500
	UpstreamErr        = -502
	ServiceUnavailable = -503
	Deadline           = -504
)

var (
	mu    sync.RWMutex
	texts = map[int]string{
		OK:                 "ok",
		NoLogin:            "Account not logged in",
		Unauthorized:       "Unauthorized",
		AccessDenied:       "Access denied",
		RequestErr:         "Invalid request",
		ParamErr:           "Invalid parameters",
		SignErr:            "Signature verification failed",
		NothingFound:       "Resource not found",
		Conflict:           "Resource conflict",
		StateConflict:      "Invalid state transition",
		PaymentRequired:    "Payment required",
		ResourceExpired:    "Resource expired",
		TooManyRequests:    "Too many requests",
		ServerErr:          "Internal server error",
		UpstreamErr:        "Upstream service error",
		ServiceUnavailable: "Service unavailable",
		Deadline:           "Deadline exceeded",
	}
)

// Register adds or replaces the text of a code.
func Register(code int, text string) {
	mu.Lock()
	defer mu.Unlock()
	texts[code] = text
}

// Text returns the message registered for code.
func Text(code int) string {
	mu.RLock()
	defer mu.RUnlock()
	if t, ok := texts[code]; ok {
		return t
	}
	return texts[ServerErr]
}

// ToHTTPStatus maps a business code to an HTTP status.
func ToHTTPStatus(code int) int {
	switch code {
	case OK:
		return http.StatusOK
	case NoLogin, Unauthorized:
		return http.StatusUnauthorized
	case AccessDenied:
		return http.StatusForbidden
	case RequestErr, ParamErr, SignErr, StateConflict, PaymentRequired:
		return http.StatusBadRequest
	case NothingFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case ResourceExpired:
		return http.StatusGone
	case TooManyRequests:
		return http.StatusTooManyRequests
	case ServiceUnavailable:
		return http.StatusServiceUnavailable
	case Deadline:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
