package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/recruit/core/posting/service"
	"github.com/ncobase/recruit/core/posting/structs"
	"github.com/ncobase/recruit/ecode"
	"github.com/ncobase/recruit/internal/payment"
	"github.com/ncobase/recruit/logging/logger"
	"github.com/ncobase/recruit/net/resp"
)

// maxWebhookBody caps the settlement payload read into memory.
const maxWebhookBody = 1 << 20

// Webhook receives settlement notifications from the payment provider.
type Webhook struct {
	service *service.Service
	secret  string
	logger  *logger.Logger
}

func NewWebhook(svc *service.Service, secret string, log *logger.Logger) *Webhook {
	if log == nil {
		log = logger.StdLogger()
	}
	return &Webhook{service: svc, secret: secret, logger: log}
}

func (w *Webhook) Handle(c *gin.Context) {
	ctx := c.Request.Context()
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		resp.Fail(c.Writer, resp.BadRequest("unreadable body"))
		return
	}

	if err := payment.VerifySignature(w.secret, body, c.GetHeader(payment.SignatureHeader)); err != nil {
		w.logger.Warn(ctx, "Rejected payment webhook", "error", err, "client_ip", c.ClientIP())
		if errors.Is(err, payment.ErrMissingSignature) {
			resp.Fail(c.Writer, resp.BadRequest(err.Error()))
			return
		}
		resp.Fail(c.Writer, resp.UnAuthorized(err.Error()))
		return
	}

	settlement, err := payment.ParseSettlement(body)
	if errors.Is(err, payment.ErrIgnoredEvent) {
		resp.Success(c.Writer, map[string]any{"ignored": true})
		return
	}
	if err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	rec, err := w.service.ConfirmPayment(ctx, settlement.JobPostingID, &structs.Settlement{
		SessionID:   settlement.SessionID,
		ProviderRef: settlement.ProviderRef,
		Succeeded:   settlement.Succeeded,
	})
	switch {
	case err == nil:
		resp.Success(c.Writer, rec)
	case ecode.IsCode(err, ecode.StateConflict):
		// a settlement for a superseded session; acknowledge so it is not redelivered
		w.logger.Warn(ctx, "Ignored stale settlement", "event_id", settlement.EventID,
			"job_posting_id", settlement.JobPostingID, "session_id", settlement.SessionID)
		resp.WithStatusCode(c.Writer, http.StatusOK, map[string]any{"ignored": true})
	default:
		fail(c, err)
	}
}
