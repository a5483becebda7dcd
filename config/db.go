package config

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/omardr777/ai-dashboard/models"
)

// OpenDatabase connects to PostgreSQL and sizes the connection pool.
func OpenDatabase(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: NewGormLogger(log, 200*time.Millisecond, gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxConns)
	sqlDB.SetConnMaxIdleTime(30 * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("Database connected successfully", zap.Int("max_conns", cfg.DBMaxConns))
	return db, nil
}

// MigrateJournal creates the sync run tables. The domain tables are owned elsewhere.
func MigrateJournal(db *gorm.DB) error {
	return db.AutoMigrate(&models.SyncRun{}, &models.SyncActionRecord{})
}

// MigrateAll also creates the domain tables, for local development and tests.
func MigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Species{}, &models.Image{}, &models.Tree{}, &models.Prediction{}); err != nil {
		return err
	}
	return MigrateJournal(db)
}
