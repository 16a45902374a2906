package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ncobase/recruit/data/metrics"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out short-lived advisory locks backed by SET NX.
type Locker struct {
	rc        *redis.Client
	prefix    string
	collector metrics.Collector
}

// NewLocker creates a locker. A nil client grants every lock.
func NewLocker(rc *redis.Client, prefix string, collector metrics.Collector) *Locker {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	return &Locker{rc: rc, prefix: prefix, collector: collector}
}

// TryLock attempts to take the lock for name. When acquired the returned
// release function must be called; ok is false when another holder has it.
func (l *Locker) TryLock(ctx context.Context, name string, ttl time.Duration) (release func(), ok bool, err error) {
	if l == nil || l.rc == nil {
		return func() {}, true, nil
	}

	key := fmt.Sprintf("%s:%s", l.prefix, name)
	token := uuid.NewString()
	ok, err = l.rc.SetNX(ctx, key, token, ttl).Result()
	l.collector.RedisCommand("setnx", err)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release = func() {
		// the caller's ctx may already be cancelled
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		err := releaseScript.Run(ctx, l.rc, []string{key}, token).Err()
		l.collector.RedisCommand("evalsha", err)
	}
	return release, true, nil
}
