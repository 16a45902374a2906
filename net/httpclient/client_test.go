package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func TestDoSendsJSONAndAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(Options{Name: "test", BaseURL: srv.URL + "/", APIKey: "k"})
	body, err := c.Do(context.Background(), http.MethodPost, "/things", map[string]string{"a": "b"})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %s", body)
	}
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":"bad payload"}`))
	}))
	defer srv.Close()

	c := New(Options{Name: "test", BaseURL: srv.URL, BreakerFailures: 2})
	for i := 0; i < 3; i++ {
		_, err := c.Do(context.Background(), http.MethodGet, "/", nil)
		if StatusCode(err) != http.StatusUnprocessableEntity {
			t.Fatalf("call %d: error = %v", i, err)
		}
	}
	if c.State() != gobreaker.StateClosed {
		t.Errorf("breaker state = %v, want closed", c.State())
	}
}

func TestServerErrorsOpenBreaker(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Options{Name: "test", BaseURL: srv.URL, BreakerFailures: 2, BreakerTimeout: time.Minute})
	for i := 0; i < 2; i++ {
		if _, err := c.Do(context.Background(), http.MethodGet, "/", nil); StatusCode(err) != http.StatusBadGateway {
			t.Fatalf("call %d: error = %v", i, err)
		}
	}
	_, err := c.Do(context.Background(), http.MethodGet, "/", nil)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("third call error = %v, want ErrCircuitOpen", err)
	}
	if calls != 2 {
		t.Errorf("upstream calls = %d, want 2", calls)
	}
}
