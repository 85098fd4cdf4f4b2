package handlers

import (
	"net/http"

	"culturemap/internal/apperror"
	"culturemap/internal/middleware"
	"culturemap/internal/models"
	"culturemap/internal/services"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	svc *services.LedgerService
}

func NewVoteHandler(svc *services.LedgerService) *VoteHandler {
	return &VoteHandler{svc: svc}
}

// Upsert sets the caller's rating: 201 on the first vote, 200 on a change
func (h *VoteHandler) Upsert(c *gin.Context) {
	var body struct {
		models.TargetRef
		Value *int `json:"value"`
	}
	if !bindJSON(c, &body) {
		return
	}
	target, err := body.Resolve()
	if err != nil {
		HandleError(c, err)
		return
	}
	if body.Value == nil {
		HandleError(c, apperror.Invalid("value", "is required"))
		return
	}

	out, vote, err := h.svc.UpsertVote(c.Request.Context(), middleware.CurrentPrincipal(c), target, *body.Value)
	if err != nil {
		HandleError(c, err)
		return
	}
	status := http.StatusOK
	if out == services.Created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"outcome": out, "vote": vote})
}

// Summary is public
func (h *VoteHandler) Summary(c *gin.Context) {
	target, ok := pathTarget(c)
	if !ok {
		return
	}
	sum, err := h.svc.Summarize(c.Request.Context(), target)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
