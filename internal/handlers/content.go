package handlers

import (
	"net/http"

	"culturemap/internal/apperror"
	"culturemap/internal/middleware"
	"culturemap/internal/models"
	"culturemap/internal/policy"
	"culturemap/internal/services"
	"culturemap/internal/utils"

	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	svc *services.ModerationService
}

func NewContentHandler(svc *services.ModerationService) *ContentHandler {
	return &ContentHandler{svc: svc}
}

// Submit creates a pending place or event
func (h *ContentHandler) Submit(c *gin.Context) {
	kind, ok := pathKind(c)
	if !ok {
		return
	}
	var in services.SubmitInput
	if !bindJSON(c, &in) {
		return
	}

	item, err := h.svc.Submit(c.Request.Context(), middleware.CurrentPrincipal(c), kind, in)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Approve 审核通过
func (h *ContentHandler) Approve(c *gin.Context) {
	kind, ok := pathKind(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	item, err := h.svc.Approve(c.Request.Context(), middleware.CurrentPrincipal(c), kind, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Reject 审核拒绝，必须给出理由
func (h *ContentHandler) Reject(c *gin.Context) {
	kind, ok := pathKind(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	p := middleware.CurrentPrincipal(c)
	if err := policy.Require(p, policy.RejectContent, nil); err != nil {
		HandleError(c, err)
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if !bindJSON(c, &body) {
		return
	}

	item, err := h.svc.Reject(c.Request.Context(), p, kind, id, body.Reason)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Publish shows or hides an approved item
func (h *ContentHandler) Publish(c *gin.Context) {
	kind, ok := pathKind(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	p := middleware.CurrentPrincipal(c)
	if err := policy.Require(p, policy.ApproveContent, nil); err != nil {
		HandleError(c, err)
		return
	}
	var body struct {
		Published *bool `json:"published"`
	}
	if !bindJSON(c, &body) {
		return
	}
	if body.Published == nil {
		HandleError(c, apperror.Invalid("published", "is required"))
		return
	}

	item, err := h.svc.SetPublished(c.Request.Context(), p, kind, id, *body.Published)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Delete 删除地点/活动；投票和评论留在互动服务中
func (h *ContentHandler) Delete(c *gin.Context) {
	kind, ok := pathKind(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentPrincipal(c), kind, id); err != nil {
		HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// List 列表，按角色过滤
func (h *ContentHandler) List(c *gin.Context) {
	kind, ok := pathKind(c)
	if !ok {
		return
	}

	page, err := h.svc.List(c.Request.Context(), middleware.CurrentPrincipal(c), services.ListQuery{
		Kind:     kind,
		Category: c.Query("category"),
		State:    models.ModerationState(c.Query("state")),
		Page:     utils.PositiveInt(c.Query("page"), 1, 0),
		PerPage:  utils.PositiveInt(c.Query("perPage"), services.DefaultPerPage, services.MaxPerPage),
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Detail 详情；不可见的条目一律 404
func (h *ContentHandler) Detail(c *gin.Context) {
	kind, ok := pathKind(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	item, err := h.svc.Get(c.Request.Context(), middleware.CurrentPrincipal(c), kind, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
