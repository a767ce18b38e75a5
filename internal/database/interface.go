package database

import (
	"context"

	"github.com/rehaber/rehaber-backend/internal/logger"
	"gorm.io/gorm"
)

// Service opens and owns the relational store shared by every repository
type Service interface {
	Connect() (*gorm.DB, error)
	// Ping verifies the open connection, used by the health endpoint
	Ping(ctx context.Context) error
	Close() error
}

// Logger is the logger the database layer writes to, including gorm traces
type Logger = logger.Logger
