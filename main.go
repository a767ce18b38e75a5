package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rehaber/rehaber-backend/internal/config"
	"github.com/rehaber/rehaber-backend/internal/logger"
)

func main() {
	// Bootstrap logger until the configured one is available
	bootLogger, err := logger.NewService(&logger.Config{Level: logger.InfoLevel})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	configService := config.NewConfigService(bootLogger)
	cfg, err := configService.Load(".")
	if err != nil {
		bootLogger.LogFatal(err, "Failed to load configuration")
	}

	appLogger, err := logger.NewService(newLoggerConfig(cfg.Logging))
	if err != nil {
		bootLogger.LogFatal(err, "Failed to initialize configured logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg, appLogger)
	if err != nil {
		appLogger.LogFatal(err, "Failed to initialize application")
	}

	runErr := app.Run(ctx)
	if err := app.Close(); err != nil {
		appLogger.LogError(err, "Error during shutdown")
	}
	if runErr != nil {
		appLogger.LogError(runErr, "Application error")
		os.Exit(1)
	}
}

func newLoggerConfig(cfg config.LoggingConfig) *logger.Config {
	lc := &logger.Config{
		Backend:     logger.Backend(cfg.Backend),
		Level:       logger.Level(cfg.Level),
		Format:      cfg.Format,
		Output:      cfg.Output,
		Development: cfg.Development,
	}
	lc.File.Enabled = cfg.File.Enabled
	lc.File.Path = cfg.File.Path
	return lc
}
