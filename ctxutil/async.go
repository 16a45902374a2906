package ctxutil

import (
	"context"
	"time"
)

// AsyncTimeout bounds detached work when the caller passes no timeout.
const AsyncTimeout = 10 * time.Second

// WithAsyncContext returns a context for work that must finish even if the
// request that started it is cancelled, such as expiring an orphaned payment
// session or sending an email. Values like the trace and user id are kept.
func WithAsyncContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = AsyncTimeout
	}
	return context.WithTimeout(context.WithoutCancel(parent), timeout)
}
