package router

import (
	"net/http"

	"culturemap/internal/auth"
	"culturemap/internal/client"
	"culturemap/internal/handlers"
	"culturemap/internal/middleware"
	"culturemap/internal/services"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps carries what the mounted route groups need. A nil service leaves its
// routes unmounted, which is how one binary serves any single role.
type Deps struct {
	Validator  *auth.Validator
	Moderation *services.ModerationService
	Ledger     *services.LedgerService
	Gateway    *client.Client
	Log        *zap.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(middleware.RequestLogger(d.Log))

	// 运维路由 (Ops Routes)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if d.Gateway != nil {
		gatewayHandler := handlers.NewGatewayHandler(d.Gateway)

		// 聚合页面 (Aggregated Pages)
		pages := r.Group("/pages")
		pages.Use(gzip.Gzip(gzip.DefaultCompression))
		{
			pages.GET("/:kind", gatewayHandler.List)       // 列表页 + 评分
			pages.GET("/:kind/:id", gatewayHandler.Detail) // 详情页 + 评分 + 评论
		}
	}

	if d.Moderation == nil && d.Ledger == nil {
		return
	}
	loadPrincipal := middleware.LoadPrincipal(d.Validator, d.Log)

	if d.Moderation != nil {
		contentHandler := handlers.NewContentHandler(d.Moderation)

		content := r.Group("/content")
		content.Use(loadPrincipal)
		{
			content.GET("/:kind", contentHandler.List)       // 列表，按角色过滤
			content.GET("/:kind/:id", contentHandler.Detail) // 详情，隐藏条目返回 404
		}

		// 受保护路由 (Protected Routes)
		authorized := content.Group("")
		authorized.Use(middleware.AuthRequired())
		{
			authorized.POST("/:kind", contentHandler.Submit)             // 提交新地点/活动
			authorized.PUT("/:kind/:id/approve", contentHandler.Approve) // 审核通过
			authorized.PUT("/:kind/:id/reject", contentHandler.Reject)   // 审核拒绝
			authorized.PUT("/:kind/:id/publish", contentHandler.Publish) // 上线/下线
			authorized.DELETE("/:kind/:id", contentHandler.Delete)       // 删除 (作者或审核员)
		}
	}

	if d.Ledger != nil {
		favoriteHandler := handlers.NewFavoriteHandler(d.Ledger)
		voteHandler := handlers.NewVoteHandler(d.Ledger)
		commentHandler := handlers.NewCommentHandler(d.Ledger)

		interactions := r.Group("/interactions")
		interactions.Use(loadPrincipal)
		{
			interactions.GET("/votes/summary/:kind/:id", voteHandler.Summary) // 评分汇总
			interactions.GET("/comments/:kind/:id", commentHandler.List)      // 评论列表
		}

		authorized := interactions.Group("")
		authorized.Use(middleware.AuthRequired())
		{
			authorized.POST("/favorites/toggle", favoriteHandler.Toggle)  // 收藏/取消收藏
			authorized.GET("/favorites", favoriteHandler.List)            // 我的收藏
			authorized.POST("/votes", voteHandler.Upsert)                 // 评分
			authorized.POST("/comments/:kind/:id", commentHandler.Create) // 发表评论
		}
	}
}
