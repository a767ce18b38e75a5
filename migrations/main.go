package migrations

import (
	"fmt"

	"github.com/rehaber/rehaber-backend/internal/database"
	"github.com/rehaber/rehaber-backend/internal/logger"
	"gorm.io/gorm"
)

type Migrator interface {
	Up() error
	Down() error
}

type namedMigration struct {
	Name     string
	Migrator Migrator
}

func all(db *gorm.DB) []namedMigration {
	return []namedMigration{
		{"001_create_engagements", NewEngagementMigration(db)},
		{"002_create_comments", NewCommentMigration(db)},
		{"003_create_registrations", NewRegistrationMigration(db)},
		{"004_create_video_progress", NewVideoProgressMigration(db)},
		{"005_create_notifications", NewNotificationMigration(db)},
	}
}

// RunMigrations applies ("up") or rolls back ("down") the relational schema.
// Applied migrations are tracked in schema_migrations and never run twice.
func RunMigrations(db *gorm.DB, direction string, migrationConfig *database.MigrationConfig, log logger.Logger) error {
	log.LogInfo("Migration Configuration", map[string]interface{}{
		"environment":     migrationConfig.Environment,
		"auto_migrate":    migrationConfig.AutoMigrate,
		"force_migration": migrationConfig.ForceRun,
		"direction":       direction,
	})

	if err := migrationConfig.InitializeMigrationTable(); err != nil {
		return fmt.Errorf("failed to initialize migration table: %v", err)
	}

	if !migrationConfig.ShouldRunMigration() {
		log.LogInfo("Skipping migrations", map[string]interface{}{
			"environment":     migrationConfig.Environment,
			"auto_migrate":    migrationConfig.AutoMigrate,
			"force_migration": migrationConfig.ForceRun,
		})
		return nil
	}

	migrations := all(db)

	switch direction {
	case "up":
		for i, migration := range migrations {
			applied, err := migrationConfig.HasMigrationBeenApplied(migration.Name)
			if err != nil {
				return fmt.Errorf("failed to check migration status: %v", err)
			}
			if applied {
				log.LogDebug("Migration already applied", map[string]interface{}{
					"migration": migration.Name,
				})
				continue
			}

			log.LogInfo("Running migration up", map[string]interface{}{
				"index": i + 1,
				"name":  migration.Name,
			})
			if err := migration.Migrator.Up(); err != nil {
				return fmt.Errorf("failed to run migration %s up: %v", migration.Name, err)
			}

			if err := migrationConfig.RecordMigration(migration.Name, migration.Name); err != nil {
				return fmt.Errorf("failed to record migration %s: %v", migration.Name, err)
			}
		}
	case "down":
		for i := len(migrations) - 1; i >= 0; i-- {
			migration := migrations[i]
			log.LogInfo("Running migration down", map[string]interface{}{
				"index": i + 1,
				"name":  migration.Name,
			})
			if err := migration.Migrator.Down(); err != nil {
				return fmt.Errorf("failed to run migration %s down: %v", migration.Name, err)
			}
			if err := migrationConfig.ForgetMigration(migration.Name); err != nil {
				return fmt.Errorf("failed to forget migration %s: %v", migration.Name, err)
			}
		}
	default:
		return fmt.Errorf("invalid migration direction: %s", direction)
	}

	return nil
}
