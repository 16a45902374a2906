// Package task wires the gateway to the external AI worker API.
package task

import (
	"github.com/gin-gonic/gin"
	"github.com/ncobase/recruit/core/task/handler"
	"github.com/ncobase/recruit/core/task/service"
)

type Module struct {
	Service *service.Service
	handler *handler.Handler
}

func New(svc *service.Service) *Module {
	return &Module{Service: svc, handler: handler.New(svc)}
}

func (m *Module) Name() string {
	return "task"
}

func (m *Module) RegisterRoutes(authed *gin.RouterGroup) {
	tasks := authed.Group("/tasks")
	{
		tasks.POST("/:kind", m.handler.HandleSubmit)
		tasks.GET("/:taskId", m.handler.HandlePoll)
		tasks.DELETE("/:taskId", m.handler.HandleCancel)
	}
}
