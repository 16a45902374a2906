package ecode

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, OK},
		{"plain", errors.New("boom"), ServerErr},
		{"domain", NotFoundf("job posting %s", "x"), NothingFound},
		{"wrapped", fmt.Errorf("outer: %w", Expiredf("gone")), ResourceExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("archive: %w", StateConflictf("posting is DRAFT"))
	if !errors.Is(err, &Error{Code: StateConflict}) {
		t.Fatal("expected errors.Is to match by code")
	}
	if errors.Is(err, &Error{Code: NothingFound}) {
		t.Fatal("unexpected match on different code")
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream(cause, "payment provider")
	if !errors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if err.Error() != "payment provider: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestToHTTPStatus(t *testing.T) {
	tests := map[int]int{
		OK:              http.StatusOK,
		NoLogin:         http.StatusUnauthorized,
		AccessDenied:    http.StatusForbidden,
		ParamErr:        http.StatusBadRequest,
		StateConflict:   http.StatusBadRequest,
		PaymentRequired: http.StatusBadRequest,
		NothingFound:    http.StatusNotFound,
		ResourceExpired: http.StatusGone,
		UpstreamErr:     http.StatusInternalServerError,
		ServerErr:       http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := ToHTTPStatus(code); got != want {
			t.Errorf("ToHTTPStatus(%d) = %d, want %d", code, got, want)
		}
	}
}

func TestNewDefaultsMessage(t *testing.T) {
	if got := New(PaymentRequired, "").Message; got != Text(PaymentRequired) {
		t.Errorf("message = %q", got)
	}
}
