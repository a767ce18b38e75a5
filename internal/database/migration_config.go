package database

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"
)

// MigrationConfig holds configuration for database migrations
type MigrationConfig struct {
	Environment string
	AutoMigrate bool
	ForceRun    bool
	db          *gorm.DB
}

// NewMigrationConfig creates a migration configuration from ENV, AUTO_MIGRATE and FORCE_MIGRATION
func NewMigrationConfig(db *gorm.DB) *MigrationConfig {
	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}

	// AUTO_MIGRATE defaults to true in development and test
	autoMigrate := env == "development" || env == "test"
	if autoMigrateEnv := os.Getenv("AUTO_MIGRATE"); autoMigrateEnv != "" {
		autoMigrate = autoMigrateEnv == "true"
	}

	return &MigrationConfig{
		Environment: env,
		AutoMigrate: autoMigrate,
		ForceRun:    os.Getenv("FORCE_MIGRATION") == "true",
		db:          db,
	}
}

// InitializeMigrationTable creates the migrations tracking table
func (c *MigrationConfig) InitializeMigrationTable() error {
	if err := c.db.AutoMigrate(&MigrationRecord{}); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %v", err)
	}
	return nil
}

// HasMigrationBeenApplied checks if a specific migration has already been run
func (c *MigrationConfig) HasMigrationBeenApplied(name string) (bool, error) {
	var count int64
	err := c.db.Model(&MigrationRecord{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

// RecordMigration records a successful migration
func (c *MigrationConfig) RecordMigration(name string, content string) error {
	hash := sha256.Sum256([]byte(content))

	var batchNo int
	err := c.db.Model(&MigrationRecord{}).Select("COALESCE(MAX(batch_no), 0) + 1").Row().Scan(&batchNo)
	if err != nil {
		return fmt.Errorf("failed to determine batch number: %v", err)
	}

	record := MigrationRecord{
		Name:      name,
		Hash:      hex.EncodeToString(hash[:]),
		AppliedAt: time.Now().UTC(),
		BatchNo:   batchNo,
	}

	return c.db.Create(&record).Error
}

// ForgetMigration removes the record of a rolled back migration
func (c *MigrationConfig) ForgetMigration(name string) error {
	return c.db.Where("name = ?", name).Delete(&MigrationRecord{}).Error
}

// GetAppliedMigrations returns a list of all applied migrations
func (c *MigrationConfig) GetAppliedMigrations() ([]MigrationRecord, error) {
	var migrations []MigrationRecord
	err := c.db.Order("applied_at").Order("id").Find(&migrations).Error
	return migrations, err
}

// ShouldRunMigration determines if migrations should be executed
func (c *MigrationConfig) ShouldRunMigration() bool {
	if c.ForceRun {
		return true
	}

	if c.Environment == "development" || c.Environment == "test" {
		return c.AutoMigrate
	}

	// Other environments only migrate when forced
	return false
}
