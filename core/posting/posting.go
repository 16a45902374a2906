// Package posting wires the job posting module: lifecycle, purchases,
// expiry sweep and the payment webhook.
package posting

import (
	"github.com/gin-gonic/gin"
	"github.com/ncobase/recruit/config"
	"github.com/ncobase/recruit/core/posting/handler"
	"github.com/ncobase/recruit/core/posting/service"
	"github.com/ncobase/recruit/logging/logger"
)

type Module struct {
	Service *service.Service
	handler *handler.Handler
	webhook *handler.Webhook
}

// New creates the module around an existing service.
func New(svc *service.Service, auth *config.Auth, pay *config.Payment, log *logger.Logger) *Module {
	var operators []string
	if auth != nil {
		operators = auth.Operators
	}
	var secret string
	if pay != nil {
		secret = pay.WebhookSecret
	}
	return &Module{
		Service: svc,
		handler: handler.New(svc, operators),
		webhook: handler.NewWebhook(svc, secret, log),
	}
}

func (m *Module) Name() string {
	return "posting"
}

// RegisterRoutes mounts the authenticated API on authed and the provider
// webhook on public.
func (m *Module) RegisterRoutes(authed, public *gin.RouterGroup) {
	postings := authed.Group("/job-postings")
	{
		postings.POST("", m.handler.HandleCreate)
		postings.GET("/:id", m.handler.HandleGet)
		postings.PATCH("/:id", m.handler.HandleUpdate)
		postings.POST("/:id/purchase", m.handler.HandlePurchase)
		postings.GET("/:id/purchase", m.handler.HandleGetPurchase)
		postings.PATCH("/:id/publish", m.handler.HandlePublish)
		postings.PATCH("/:id/archive", m.handler.HandleArchive)
		postings.PATCH("/:id/republish", m.handler.HandleRepublish)
		postings.GET("/:id/expiry", m.handler.HandleExpiry)
	}
	authed.POST("/admin/sweep", m.handler.HandleSweep)

	public.POST("/payments/webhook", m.webhook.Handle)
}
