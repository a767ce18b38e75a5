package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/rehaber/rehaber-backend/internal/config"
	"github.com/rehaber/rehaber-backend/internal/database"
	"github.com/rehaber/rehaber-backend/internal/database/scylladb"
	"github.com/rehaber/rehaber-backend/internal/logger"
	"github.com/rehaber/rehaber-backend/migrations"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	target := flag.String("target", "sql", "schema to migrate: sql or scylladb")
	configPath := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	loggerInstance, err := logger.NewLogger(&logger.Config{
		Level:  logger.InfoLevel,
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	cfg, err := config.NewConfigService(loggerInstance).Load(*configPath)
	if err != nil {
		loggerInstance.LogFatal(err, "Failed to load configuration")
	}

	switch *target {
	case "sql":
		err = migrateSQL(cfg, *direction, loggerInstance)
	case "scylladb":
		err = migrateScyllaDB(cfg, *direction, loggerInstance)
	default:
		err = fmt.Errorf("unknown migration target: %s", *target)
	}
	if err != nil {
		loggerInstance.LogFatal(err, "Migration failed")
	}

	loggerInstance.LogInfo("Migrations completed successfully", map[string]interface{}{
		"target":    *target,
		"direction": *direction,
	})
}

func migrateSQL(cfg *config.Config, direction string, log logger.Logger) error {
	databaseService := database.NewDatabaseService(&cfg.Database, log)
	db, err := databaseService.Connect()
	if err != nil {
		return err
	}
	defer databaseService.Close()

	migrationConfig := database.NewMigrationConfig(db)
	// an explicit invocation always runs
	migrationConfig.ForceRun = true

	return migrations.RunMigrations(db, direction, migrationConfig, log)
}

func migrateScyllaDB(cfg *config.Config, direction string, log logger.Logger) error {
	client := scylladb.NewClient(scylladb.NewConfigFromScyllaDBConfig(&cfg.ScyllaDB), log)
	// Connect creates the keyspace and tables
	if err := client.Connect(); err != nil {
		return err
	}
	defer client.Close()

	switch direction {
	case "up":
		return nil
	case "down":
		return client.Schema().DropSchema()
	default:
		return fmt.Errorf("invalid migration direction: %s", direction)
	}
}
