package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/recruit/config"
	"github.com/prometheus/client_golang/prometheus"
)

func TestAllowBurstThenReject(t *testing.T) {
	l := New(&config.RateLimit{Enabled: true, RPS: 1, Burst: 2}, nil)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("1.1.1.1") || !l.Allow("1.1.1.1") {
		t.Fatal("burst requests rejected")
	}
	if l.Allow("1.1.1.1") {
		t.Fatal("request over burst allowed")
	}
	if !l.Allow("2.2.2.2") {
		t.Fatal("other client limited")
	}

	now = now.Add(time.Second)
	if !l.Allow("1.1.1.1") {
		t.Fatal("token not refilled after one second")
	}
}

func TestExemptAndDisabled(t *testing.T) {
	l := New(&config.RateLimit{Enabled: true, RPS: 1, Burst: 1, Exempt: []string{"10.0.0.1"}}, nil)
	for i := 0; i < 5; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatal("exempt client limited")
		}
	}

	off := New(&config.RateLimit{Enabled: false, RPS: 1, Burst: 1}, nil)
	for i := 0; i < 5; i++ {
		if !off.Allow("1.1.1.1") {
			t.Fatal("disabled limiter rejected request")
		}
	}
}

func TestIdleBucketsAreDropped(t *testing.T) {
	l := New(&config.RateLimit{Enabled: true, RPS: 1, Burst: 1}, nil)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("a")
	l.Allow("b")
	now = now.Add(idleAfter + time.Minute)
	l.Allow("c")

	if got := l.size(); got != 1 {
		t.Errorf("buckets = %d, want 1", got)
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := New(&config.RateLimit{Enabled: true, RPS: 0.001, Burst: 1}, prometheus.NewRegistry())

	r := gin.New()
	r.GET("/invitations/:token", l.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 2)
	for i := range codes {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/invitations/abc", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		r.ServeHTTP(w, req)
		codes[i] = w.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 429]", codes)
	}
}
