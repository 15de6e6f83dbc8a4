package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"quizforge/internal/config"
)

// NewPostgresDB opens the one shared connection handle. Connecting lazily
// is gorm's default; a failure here is a typed error for main to act on,
// never a panic.
func NewPostgresDB(cfg config.DB) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}
