package handlers

import (
	"net/http"
	"net/url"
	"time"

	"culturemap/internal/auth"
	"culturemap/internal/client"

	"github.com/gin-gonic/gin"
)

// GatewayHandler serves the aggregated pages the front-end renders. The
// caller's token is forwarded so moderators see pending items.
type GatewayHandler struct {
	client *client.Client
}

func NewGatewayHandler(c *client.Client) *GatewayHandler {
	return &GatewayHandler{client: c}
}

func bearer(c *gin.Context) string {
	token, _ := auth.ParseBearer(c.GetHeader("Authorization"))
	return token
}

// List 列表页
func (h *GatewayHandler) List(c *gin.Context) {
	kind, ok := pathKind(c)
	if !ok {
		return
	}
	query := url.Values{}
	for _, key := range []string{"page", "perPage", "category", "state"} {
		if v := c.Query(key); v != "" {
			query.Set(key, v)
		}
	}
	page := h.client.List(c.Request.Context(), kind, query, bearer(c))
	if c.Query("sort") == "popular" {
		page.SortByPopularity(time.Now())
	}
	c.JSON(http.StatusOK, page)
}

// Detail 详情页
func (h *GatewayHandler) Detail(c *gin.Context) {
	kind, ok := pathKind(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	page, err := h.client.Page(c.Request.Context(), kind, id, bearer(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
