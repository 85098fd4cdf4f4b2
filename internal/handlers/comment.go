package handlers

import (
	"net/http"

	"culturemap/internal/middleware"
	"culturemap/internal/services"
	"culturemap/internal/utils"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	svc *services.LedgerService
}

func NewCommentHandler(svc *services.LedgerService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// Create 发表评论
func (h *CommentHandler) Create(c *gin.Context) {
	target, ok := pathTarget(c)
	if !ok {
		return
	}
	var body struct {
		Text string `json:"text"`
	}
	if !bindJSON(c, &body) {
		return
	}

	comment, err := h.svc.AddComment(c.Request.Context(), middleware.CurrentPrincipal(c), target, body.Text)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// List 评论列表，最新在前
func (h *CommentHandler) List(c *gin.Context) {
	target, ok := pathTarget(c)
	if !ok {
		return
	}

	page, err := h.svc.ListComments(c.Request.Context(), target,
		utils.PositiveInt(c.Query("page"), 1, 0),
		utils.PositiveInt(c.Query("perPage"), services.DefaultPerPage, services.MaxPerPage))
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
