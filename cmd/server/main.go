package main

import (
	"log"

	"culturemap/internal/auth"
	"culturemap/internal/client"
	"culturemap/internal/config"
	"culturemap/internal/db"
	"culturemap/internal/logging"
	"culturemap/internal/router"
	"culturemap/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	deps := router.Deps{
		Validator: auth.NewValidator(cfg.JWTSecret, cfg.JWTIssuer),
		Log:       logger,
	}

	// Each service migrates only the tables it owns.
	var tables []interface{}
	if cfg.ServesContent() {
		tables = append(tables, db.ContentTables...)
	}
	if cfg.ServesInteractions() {
		tables = append(tables, db.InteractionTables...)
	}
	if len(tables) > 0 {
		conn, err := db.Open(cfg.DatabaseURL, logger, tables...)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		if cfg.ServesContent() {
			deps.Moderation = services.NewModerationService(conn, logger.Named("moderation"))
		}
		if cfg.ServesInteractions() {
			deps.Ledger = services.NewLedgerService(conn, logger.Named("ledger"))
		}
	}
	if cfg.ServesGateway() {
		deps.Gateway = client.New(cfg.ContentServiceURL, cfg.InteractionServiceURL, cfg.UpstreamTimeout, logger.Named("gateway"))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	router.RegisterRoutes(r, deps)

	logger.Info("culturemap server starting",
		zap.String("service", string(cfg.Service)),
		zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
