// Package server assembles the HTTP surface: middlewares, the /api/v1
// route groups of every module, health and metrics.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/recruit/config"
	"github.com/ncobase/recruit/core/invitation"
	"github.com/ncobase/recruit/core/posting"
	"github.com/ncobase/recruit/core/task"
	"github.com/ncobase/recruit/data"
	"github.com/ncobase/recruit/logging/logger"
	"github.com/ncobase/recruit/metrics"
	"github.com/ncobase/recruit/net/ratelimit"
	"github.com/ncobase/recruit/net/resp"
	"github.com/ncobase/recruit/security/jwt"
)

// APIPrefix is the root of every module route.
const APIPrefix = "/api/v1"

type Server struct {
	config  *config.Config
	logger  *logger.Logger
	data    *data.Data
	metrics *metrics.Metrics
	tokens  jwt.TokenValidator
	limiter *ratelimit.Limiter

	posting    *posting.Module
	invitation *invitation.Module
	task       *task.Module

	engine *gin.Engine
}

// Modules groups the domain modules mounted by the server.
type Modules struct {
	Posting    *posting.Module
	Invitation *invitation.Module
	Task       *task.Module
}

func New(cfg *config.Config, log *logger.Logger, d *data.Data, m *metrics.Metrics, tokens jwt.TokenValidator, limiter *ratelimit.Limiter, mods *Modules) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	if mods == nil || mods.Posting == nil || mods.Invitation == nil || mods.Task == nil {
		return nil, fmt.Errorf("modules are not initialized")
	}
	return &Server{
		config:     cfg,
		logger:     log,
		data:       d,
		metrics:    m,
		tokens:     tokens,
		limiter:    limiter,
		posting:    mods.Posting,
		invitation: mods.Invitation,
		task:       mods.Task,
	}, nil
}

// Router builds the gin engine once and returns it.
func (s *Server) Router() *gin.Engine {
	if s.engine != nil {
		return s.engine
	}
	if s.config.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sentryMiddleware())
	r.Use(traceMiddleware())
	r.Use(s.loggerMiddleware())
	r.Use(s.metrics.Middleware())
	r.Use(s.errorReporter())

	r.NoRoute(func(c *gin.Context) {
		resp.Fail(c.Writer, resp.NotFound("route not found"))
	})

	r.GET("/health", s.handleHealth)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := r.Group(APIPrefix)
	authed := api.Group("", authMiddleware(s.tokens))

	var publicLimits []gin.HandlerFunc
	if s.limiter != nil {
		publicLimits = append(publicLimits, s.limiter.Middleware())
	}

	s.posting.RegisterRoutes(authed, api)
	s.invitation.RegisterRoutes(authed, api, publicLimits...)
	s.task.RegisterRoutes(authed)

	s.engine = r
	return r
}

// HTTPServer returns an http.Server for the configured address.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.data == nil {
		resp.Success(c.Writer, map[string]string{"status": "healthy"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	health := s.data.Health(ctx)
	if health["status"] != "healthy" {
		resp.WithStatusCode(c.Writer, http.StatusServiceUnavailable, health)
		return
	}
	resp.Success(c.Writer, health)
}
