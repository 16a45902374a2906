// Package handler exposes invitation management and the public candidate
// endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/recruit/core/invitation/service"
	"github.com/ncobase/recruit/core/invitation/structs"
	"github.com/ncobase/recruit/ctxutil"
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

func (h *Handler) HandleIssue(c *gin.Context) {
	var req structs.IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := c.Request.Context()
	inv, err := h.service.Issue(ctx, ctxutil.GetUserID(ctx), c.Param("id"), &req)
	if err != nil {
		fail(c, err)
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusCreated, inv)
}

func (h *Handler) HandleList(c *gin.Context) {
	ctx := c.Request.Context()
	list, err := h.service.ListForPosting(ctx, ctxutil.GetUserID(ctx), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	resp.Success(c.Writer, map[string]any{
		"invitations": list,
		"count":       len(list),
	})
}

// HandleResolve is public: the token is the credential.
func (h *Handler) HandleResolve(c *gin.Context) {
	view, err := h.service.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		fail(c, err)
		return
	}
	resp.Success(c.Writer, view)
}

// HandleSubmit is public: the token is the credential.
func (h *Handler) HandleSubmit(c *gin.Context) {
	var req structs.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	result, err := h.service.Submit(c.Request.Context(), c.Param("token"), &req)
	if err != nil {
		fail(c, err)
		return
	}
	resp.Success(c.Writer, result)
}
