package server

import (
	"strings"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/ncobase/recruit/ctxutil"
	"github.com/ncobase/recruit/ecode"
	"github.com/ncobase/recruit/logging/observes"
	"github.com/ncobase/recruit/net/resp"
	"github.com/ncobase/recruit/security/jwt"
)

// traceHeader carries the request trace id in and out.
const traceHeader = "X-Trace-ID"

func sentryMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic: true,
		Timeout: 2 * time.Second,
	})
}

// traceMiddleware reuses an incoming trace id or creates one, and echoes it.
func traceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if id := c.GetHeader(traceHeader); id != "" {
			ctx = ctxutil.SetTraceID(ctx, id)
		}
		ctx, id := ctxutil.EnsureTraceID(ctx)
		ctx = ctxutil.SetClientIP(ctx, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Header(traceHeader, id)
		c.Next()
	}
}

func (s *Server) loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", method,
			"path", path,
			"status", status,
			"duration", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		}
		if uid := ctxutil.GetUserID(c.Request.Context()); uid != "" {
			fields = append(fields, "user_id", uid)
		}
		if status >= 500 {
			s.logger.Error(c.Request.Context(), append([]any{"HTTP request"}, fields...)...)
			return
		}
		s.logger.Info(c.Request.Context(), append([]any{"HTTP request"}, fields...)...)
	}
}

// errorReporter sends server-side failures attached by handlers to sentry.
func (s *Server) errorReporter() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		for _, ginErr := range c.Errors {
			if ecode.ToHTTPStatus(ecode.CodeOf(ginErr.Err)) < 500 {
				continue
			}
			if hub := sentrygin.GetHubFromContext(c); hub != nil {
				hub.CaptureException(ginErr.Err)
				continue
			}
			observes.CaptureError(c.Request.Context(), ginErr.Err)
		}
	}
}

// authMiddleware requires a valid bearer token and binds its subject as the
// acting user.
func authMiddleware(tokens jwt.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			resp.Fail(c.Writer, resp.UnAuthorized("authentication required"))
			c.Abort()
			return
		}
		if tokens == nil {
			resp.Fail(c.Writer, resp.UnAuthorized("authentication is not configured"))
			c.Abort()
			return
		}
		userID, err := tokens.SubjectOf(strings.TrimSpace(token))
		if err != nil || userID == "" {
			resp.Fail(c.Writer, resp.UnAuthorized("invalid or expired token"))
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(ctxutil.SetUserID(c.Request.Context(), userID))
		c.Next()
	}
}
