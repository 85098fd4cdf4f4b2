package handlers

import (
	"net/http"

	"culturemap/internal/middleware"
	"culturemap/internal/models"
	"culturemap/internal/services"

	"github.com/gin-gonic/gin"
)

type FavoriteHandler struct {
	svc *services.LedgerService
}

func NewFavoriteHandler(svc *services.LedgerService) *FavoriteHandler {
	return &FavoriteHandler{svc: svc}
}

// Toggle 收藏/取消收藏: 201 when created, 200 when removed
func (h *FavoriteHandler) Toggle(c *gin.Context) {
	var ref models.TargetRef
	if !bindJSON(c, &ref) {
		return
	}
	target, err := ref.Resolve()
	if err != nil {
		HandleError(c, err)
		return
	}

	out, err := h.svc.ToggleFavorite(c.Request.Context(), middleware.CurrentPrincipal(c), target)
	if err != nil {
		HandleError(c, err)
		return
	}
	status := http.StatusOK
	if out == services.Created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"outcome": out, "target": target})
}

// List returns the caller's favorites
func (h *FavoriteHandler) List(c *gin.Context) {
	favs, err := h.svc.ListFavorites(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": favs})
}
