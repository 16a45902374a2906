package ctxutil

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ctxKey string

const (
	ginContextKey ctxKey = "gin_context"

	// UserIDKey holds the authenticated user id.
	UserIDKey = "user_id"
	// TraceIDKey holds the request trace id.
	TraceIDKey = "trace_id"
	// ClientIPKey holds the caller address.
	ClientIPKey = "client_ip"
)

// WithGinContext returns a context.Context that embeds the *gin.Context.
func WithGinContext(ctx context.Context, c *gin.Context) context.Context {
	return context.WithValue(ctx, ginContextKey, c)
}

// GetGinContext extracts *gin.Context from context.Context if it exists.
func GetGinContext(ctx context.Context) (*gin.Context, bool) {
	if c, ok := ctx.Value(ginContextKey).(*gin.Context); ok {
		return c, ok
	}
	return nil, false
}

// GetValue retrieves a value from the gin context first, then from ctx.
func GetValue(ctx context.Context, key string) any {
	if c, ok := GetGinContext(ctx); ok {
		if val, exists := c.Get(key); exists {
			return val
		}
	}
	return ctx.Value(ctxKey(key))
}

// SetValue sets a value on ctx and on the embedded gin context, if any.
func SetValue(ctx context.Context, key string, val any) context.Context {
	if c, ok := GetGinContext(ctx); ok {
		c.Set(key, val)
	}
	return context.WithValue(ctx, ctxKey(key), val)
}

// SetUserID sets the authenticated user id.
func SetUserID(ctx context.Context, uid string) context.Context {
	return SetValue(ctx, UserIDKey, uid)
}

// GetUserID gets the authenticated user id, empty when anonymous.
func GetUserID(ctx context.Context) string {
	if uid, ok := GetValue(ctx, UserIDKey).(string); ok {
		return uid
	}
	return ""
}

// SetClientIP records the caller address.
func SetClientIP(ctx context.Context, ip string) context.Context {
	return SetValue(ctx, ClientIPKey, ip)
}

// GetClientIP returns the caller address.
func GetClientIP(ctx context.Context) string {
	if ip, ok := GetValue(ctx, ClientIPKey).(string); ok {
		return ip
	}
	return ""
}

// GetTraceID gets trace id from context.Context or gin.Context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := GetValue(ctx, TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// SetTraceID sets trace id to context.Context and gin.Context if available.
func SetTraceID(ctx context.Context, traceID string) context.Context {
	return SetValue(ctx, TraceIDKey, traceID)
}

// EnsureTraceID ensures that a trace ID exists in the context.
func EnsureTraceID(ctx context.Context) (context.Context, string) {
	if traceID := GetTraceID(ctx); traceID != "" {
		return ctx, traceID
	}
	traceID := uuid.NewString()
	return SetTraceID(ctx, traceID), traceID
}
