// Package ecode defines the business codes returned in API responses and the
// typed domain error used across services.
//
// Code ranges:
//   - 0: OK
//   - -100 to -199: authentication / authorization
//   - -200 to -299: request validation
//   - -300 to -399: resources
//   - -400 to -499: business rules (state conflicts, payment, expiry)
//   - -500+: server and upstream failures
//
// Services return *Error values built with the kind helpers:
//
//	return ecode.StateConflictf("job posting %s is %s", id, status)
//
// Handlers render them with resp.FromError, which maps the code through
// ToHTTPStatus.
package ecode
