// Package ratelimit limits requests per client address with token buckets.
package ratelimit

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/recruit/config"
	"github.com/ncobase/recruit/net/resp"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// idleAfter is how long an unused bucket is kept before being dropped.
const idleAfter = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per client key.
type Limiter struct {
	enabled bool
	limit   rate.Limit
	burst   int
	exempt  map[string]struct{}

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time

	rejected *prometheus.CounterVec
}

// New creates a limiter from config. reg may be nil.
func New(cfg *config.RateLimit, reg prometheus.Registerer) *Limiter {
	if cfg == nil {
		cfg = &config.RateLimit{}
	}
	l := &Limiter{
		enabled: cfg.Enabled && cfg.RPS > 0,
		limit:   rate.Limit(cfg.RPS),
		burst:   cfg.Burst,
		exempt:  make(map[string]struct{}, len(cfg.Exempt)),
		buckets: make(map[string]*bucket),
		now:     time.Now,
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recruit",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter.",
		}, []string{"route"}),
	}
	if l.burst <= 0 {
		l.burst = 1
	}
	for _, addr := range cfg.Exempt {
		l.exempt[addr] = struct{}{}
	}
	if reg != nil {
		reg.MustRegister(l.rejected)
	}
	return l
}

// Allow reports whether a request from key may proceed.
func (l *Limiter) Allow(key string) bool {
	if !l.enabled {
		return true
	}
	if _, ok := l.exempt[key]; ok {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > idleAfter {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > idleAfter {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Middleware rejects requests over the limit with 429.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			l.rejected.WithLabelValues(c.FullPath()).Inc()
			c.Header("Retry-After", "1")
			resp.Fail(c.Writer, resp.TooManyRequests("too many requests, slow down"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
