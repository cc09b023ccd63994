// Package database opens the durable store and falls back to in-memory
// repositories when it cannot be reached.
package database

import (
	"fmt"

	"cartracker/internal/models"
	"cartracker/internal/repositories"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Mode is the persistence mode reported by the health endpoint.
type Mode string

const (
	ModeConnected Mode = "connected"
	ModeDemo      Mode = "demo mode"
)

// Opener opens and migrates a database. Open is the production implementation.
type Opener func(driver, dsn string) (*gorm.DB, error)

// Backend is the set of repositories chosen at startup.
type Backend struct {
	Users repositories.UserRepository
	Cars  repositories.CarRepository
	Mode  Mode
	DB    *gorm.DB // nil in demo mode
}

// Open connects with the named driver, verifies the connection and migrates the schema.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Car{}); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("failed to migrate %s: %w", driver, err)
	}
	return db, nil
}

// Select tries the configured database once. On failure it logs the reason and
// returns in-memory repositories instead; there is no later reconnect attempt.
func Select(driver, dsn string, open Opener, log *zap.Logger) *Backend {
	db, err := open(driver, dsn)
	if err != nil {
		log.Warn("database unavailable, running in demo mode with in-memory storage",
			zap.String("driver", driver), zap.Error(err))
		return NewMemoryBackend()
	}
	log.Info("connected to database", zap.String("driver", driver))
	return &Backend{
		Users: repositories.NewGORMUserRepository(db),
		Cars:  repositories.NewGORMCarRepository(db),
		Mode:  ModeConnected,
		DB:    db,
	}
}

// NewMemoryBackend returns a fresh, empty demo-mode backend.
func NewMemoryBackend() *Backend {
	return &Backend{
		Users: repositories.NewMemoryUserRepository(),
		Cars:  repositories.NewMemoryCarRepository(),
		Mode:  ModeDemo,
	}
}

// Close releases the database connection, if any.
func (b *Backend) Close() error {
	if b.DB == nil {
		return nil
	}
	sqlDB, err := b.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
