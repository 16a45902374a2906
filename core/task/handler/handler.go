// Package handler exposes the task gateway.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/recruit/core/task/service"
	"github.com/ncobase/recruit/core/task/structs"
	"github.com/ncobase/recruit/net/resp"
)

type Handler struct {
	service *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	resp.Fail(c.Writer, resp.FromError(err))
}

// HandleSubmit submits one payload or, when payloads is present, a batch.
func (h *Handler) HandleSubmit(c *gin.Context) {
	var req structs.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := c.Request.Context()
	kind := c.Param("kind")
	if req.IsBatch() {
		handle, err := h.service.SubmitBatch(ctx, kind, req.Payloads)
		if err != nil {
			fail(c, err)
			return
		}
		resp.WithStatusCode(c.Writer, http.StatusAccepted, handle)
		return
	}

	handle, err := h.service.SubmitSingle(ctx, kind, req.Payload)
	if err != nil {
		fail(c, err)
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusAccepted, handle)
}

// HandlePoll returns a task, or a batch when batch=true.
func (h *Handler) HandlePoll(c *gin.Context) {
	batch := false
	if v := c.Query("batch"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			resp.Fail(c.Writer, resp.BadRequest("batch must be a boolean"))
			return
		}
		batch = b
	}

	ctx := c.Request.Context()
	id := c.Param("taskId")
	if batch {
		status, err := h.service.PollBatch(ctx, id)
		if err != nil {
			fail(c, err)
			return
		}
		resp.Success(c.Writer, status)
		return
	}

	result, err := h.service.Poll(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	resp.Success(c.Writer, result)
}

func (h *Handler) HandleCancel(c *gin.Context) {
	result, err := h.service.Cancel(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		fail(c, err)
		return
	}
	resp.Success(c.Writer, result)
}
