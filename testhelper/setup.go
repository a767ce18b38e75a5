package testhelper

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/rehaber/rehaber-backend/internal/database"
	"github.com/rehaber/rehaber-backend/migrations"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenTestDB opens an empty database for one test. It uses the postgres DSN in
// TEST_DATABASE_DSN when set and a private in-memory sqlite database otherwise.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger: database.NewGormLogger(NewTestLogger(false), 0).LogMode(gormlogger.Error),
	}

	var dialector gorm.Dialector
	if dsn := os.Getenv("TEST_DATABASE_DSN"); dsn != "" {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get test database handle: %v", err)
	}
	if db.Dialector.Name() == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	}
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

// SetupTestDB opens a test database and runs every migration against it.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := OpenTestDB(t)

	migrationConfig := database.NewMigrationConfig(db)
	migrationConfig.Environment = "test"
	migrationConfig.ForceRun = true

	if err := migrations.RunMigrations(db, "up", migrationConfig, NewTestLogger(false)); err != nil {
		t.Fatalf("failed to run test migrations: %v", err)
	}

	if os.Getenv("TEST_DATABASE_DSN") != "" {
		t.Cleanup(func() {
			if err := migrations.RunMigrations(db, "down", migrationConfig, NewTestLogger(false)); err != nil {
				t.Logf("failed to roll back test migrations: %v", err)
			}
		})
	}

	return db
}
