// Package handler exposes the job posting HTTP API.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/recruit/core/posting/service"
	"github.com/ncobase/recruit/core/posting/structs"
	"github.com/ncobase/recruit/ctxutil"
	"github.com/ncobase/recruit/ecode"
	"github.com/ncobase/recruit/net/resp"
)

type Handler struct {
	service   *service.Service
	operators map[string]bool
}

// New creates the handler. operators lists the user ids allowed to trigger
// administrative jobs.
func New(svc *service.Service, operators []string) *Handler {
	ops := make(map[string]bool, len(operators))
	for _, id := range operators {
		ops[id] = true
	}
	return &Handler{service: svc, operators: ops}
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	resp.Fail(c.Writer, resp.FromError(err))
}

func (h *Handler) HandleCreate(c *gin.Context) {
	var req structs.CreatePostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := c.Request.Context()
	p, err := h.service.Create(ctx, ctxutil.GetUserID(ctx), &req)
	if err != nil {
		fail(c, err)
		return
	}

	resp.WithStatusCode(c.Writer, http.StatusCreated, p)
}

func (h *Handler) HandleGet(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.service.Get(ctx, ctxutil.GetUserID(ctx), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	resp.Success(c.Writer, p)
}

func (h *Handler) HandleUpdate(c *gin.Context) {
	var patch structs.PostingPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := c.Request.Context()
	p, err := h.service.Update(ctx, ctxutil.GetUserID(ctx), c.Param("id"), &patch)
	if err != nil {
		fail(c, err)
		return
	}
	resp.Success(c.Writer, p)
}

func (h *Handler) HandlePurchase(c *gin.Context) {
	ctx := c.Request.Context()
	session, err := h.service.Purchase(ctx, ctxutil.GetUserID(ctx), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if session.Reused {
		resp.Success(c.Writer, session)
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusCreated, session)
}

func (h *Handler) HandleGetPurchase(c *gin.Context) {
	ctx := c.Request.Context()
	view, err := h.service.GetPurchase(ctx, ctxutil.GetUserID(ctx), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	resp.Success(c.Writer, view)
}

func (h *Handler) HandlePublish(c *gin.Context) {
	h.transition(c, h.service.Publish)
}

func (h *Handler) HandleArchive(c *gin.Context) {
	h.transition(c, h.service.Archive)
}

func (h *Handler) HandleRepublish(c *gin.Context) {
	h.transition(c, h.service.Republish)
}

type transitionFunc func(ctx context.Context, actorID, id string) (*structs.JobPosting, error)

func (h *Handler) transition(c *gin.Context, fn transitionFunc) {
	ctx := c.Request.Context()
	p, err := fn(ctx, ctxutil.GetUserID(ctx), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	resp.Success(c.Writer, p)
}

func (h *Handler) HandleExpiry(c *gin.Context) {
	info, err := h.service.Expiry(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	resp.Success(c.Writer, info)
}

// HandleSweep runs one expiry sweep on behalf of an operator.
func (h *Handler) HandleSweep(c *gin.Context) {
	ctx := c.Request.Context()
	if !h.operators[ctxutil.GetUserID(ctx)] {
		fail(c, ecode.Forbiddenf("operator access required"))
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fail(c, ecode.Validationf("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	result, err := h.service.Sweep(ctx, limit)
	if err != nil {
		fail(c, err)
		return
	}
	resp.Success(c.Writer, result)
}
