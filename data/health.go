package data

import (
	"context"
	"time"
)

// Health pings every configured backend.
func (d *Data) Health(ctx context.Context) map[string]any {
	services := map[string]any{}
	healthy := true

	check := func(name string, ping func(context.Context) error) {
		start := time.Now()
		err := ping(ctx)
		status := map[string]any{"status": "healthy", "latency": time.Since(start).String()}
		if err != nil {
			status["status"] = "unhealthy"
			status["error"] = err.Error()
			healthy = false
		}
		d.collector.HealthCheck(name, err == nil)
		services[name] = status
	}

	if d.db != nil {
		check("database", d.db.PingContext)
	}
	if d.redis != nil {
		check("redis", func(ctx context.Context) error { return d.redis.Ping(ctx).Err() })
	}

	status := "healthy"
	if !healthy {
		status = "degraded"
	}
	return map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"services":  services,
	}
}
