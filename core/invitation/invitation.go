// Package invitation wires candidate invitations and screening responses.
package invitation

import (
	"github.com/gin-gonic/gin"
	"github.com/ncobase/recruit/core/invitation/handler"
	"github.com/ncobase/recruit/core/invitation/service"
)

type Module struct {
	Service *service.Service
	handler *handler.Handler
}

func New(svc *service.Service) *Module {
	return &Module{Service: svc, handler: handler.New(svc)}
}

func (m *Module) Name() string {
	return "invitation"
}

// RegisterRoutes mounts owner endpoints on authed and the candidate
// endpoints on public, behind the given middlewares.
func (m *Module) RegisterRoutes(authed, public *gin.RouterGroup, publicMiddlewares ...gin.HandlerFunc) {
	authed.POST("/job-postings/:id/invitations", m.handler.HandleIssue)
	authed.GET("/job-postings/:id/invitations", m.handler.HandleList)

	candidates := public.Group("/invitations", publicMiddlewares...)
	{
		candidates.GET("/:token", m.handler.HandleResolve)
		candidates.POST("/:token", m.handler.HandleSubmit)
	}
}
