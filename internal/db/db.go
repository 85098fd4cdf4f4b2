package db

import (
	"culturemap/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Each service owns its store. The monolith migrates both sets into one.
var (
	ContentTables     = []interface{}{&models.ContentItem{}}
	InteractionTables = []interface{}{&models.Favorite{}, &models.Vote{}, &models.Comment{}}
)

// Open connects to Postgres and migrates the given tables.
func Open(dsn string, log *zap.Logger, tables ...interface{}) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	log.Info("Database connection established")

	if err := conn.AutoMigrate(tables...); err != nil {
		return nil, err
	}
	log.Info("Database migration completed", zap.Int("tables", len(tables)))
	return conn, nil
}
