package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/gin-gonic/gin"
	"github.com/rehaber/rehaber-backend/internal/auth"
	"github.com/rehaber/rehaber-backend/internal/cache"
	"github.com/rehaber/rehaber-backend/internal/comment"
	"github.com/rehaber/rehaber-backend/internal/config"
	"github.com/rehaber/rehaber-backend/internal/database"
	"github.com/rehaber/rehaber-backend/internal/database/scylladb"
	"github.com/rehaber/rehaber-backend/internal/engagement"
	httpHandler "github.com/rehaber/rehaber-backend/internal/http"
	"github.com/rehaber/rehaber-backend/internal/logger"
	"github.com/rehaber/rehaber-backend/internal/notification"
	"github.com/rehaber/rehaber-backend/internal/progress"
	"github.com/rehaber/rehaber-backend/internal/registration"
	"github.com/rehaber/rehaber-backend/migrations"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// engagementStateSize bounds the provisional toggle state kept in memory
const engagementStateSize = 10000

// App holds all application dependencies
type App struct {
	config   *config.Config
	logger   logger.Logger
	response httpHandler.ResponseHandler
	router   *gin.Engine

	database database.Service
	db       *gorm.DB
	cache    *cache.RedisService
	scylla   *scylladb.Client
	pulsar   pulsar.Client

	tokens        *auth.JWTService
	notifications notification.Service
	publisher     notification.Publisher
	engagements   engagement.Service
	toggler       *engagement.OptimisticToggler
	comments      comment.Service
	registrations registration.Service
	progress      progress.Tracker
}

// NewApp creates a new application instance with all dependencies
func NewApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	app := &App{
		config:   cfg,
		logger:   log,
		response: httpHandler.NewResponseHandler(log),
	}

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"database", app.initDatabase},
		{"cache", app.initCache},
		{"notification store", app.initNotificationStore},
		{"notification publisher", app.initPublisher},
		{"services", app.initServices},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("failed to initialize %s: %w", step.name, err)
		}
	}

	app.setupRoutes()
	return app, nil
}

func (a *App) initDatabase(ctx context.Context) error {
	a.database = database.NewDatabaseService(&a.config.Database, a.logger)
	db, err := a.database.Connect()
	if err != nil {
		return err
	}
	a.db = db

	return migrations.RunMigrations(db, "up", database.NewMigrationConfig(db), a.logger)
}

// initCache connects to Redis when enabled. The unread-count cache is an
// optimization, so an unreachable Redis only disables it.
func (a *App) initCache(ctx context.Context) error {
	if !a.config.Redis.Enabled {
		return nil
	}

	redisService, err := cache.NewRedisService(ctx, cache.NewConfigFromRedisConfig(&a.config.Redis))
	if err != nil {
		a.logger.LogWarn("Redis unavailable, unread counts will not be cached", map[string]interface{}{
			"addr":  a.config.Redis.Addr,
			"error": err.Error(),
		})
		return nil
	}
	a.cache = redisService
	return nil
}

func (a *App) initNotificationStore(ctx context.Context) error {
	if a.config.Notification.Backend != "scylladb" {
		return nil
	}

	client := scylladb.NewClient(scylladb.NewConfigFromScyllaDBConfig(&a.config.ScyllaDB), a.logger)
	if err := client.Connect(); err != nil {
		return err
	}
	a.scylla = client
	return nil
}

func (a *App) initPublisher(ctx context.Context) error {
	if !a.config.Notification.Publish.Enabled {
		a.publisher = notification.NopPublisher{}
		return nil
	}

	client, err := notification.NewPulsarClient(a.config.Pulsar)
	if err != nil {
		return err
	}
	a.pulsar = client

	publisher, err := notification.NewPulsarPublisher(client, a.config.Notification.Publish.Topic, a.config.Pulsar.OperationTimeout, a.logger)
	if err != nil {
		return err
	}
	a.publisher = publisher
	return nil
}

func (a *App) initServices(ctx context.Context) error {
	a.tokens = auth.NewJWTService(auth.NewConfigFromAuthConfig(&a.config.Auth))

	var notificationRepo notification.Repository
	if a.scylla != nil {
		notificationRepo = scylladb.NewNotificationRepository(a.scylla.Session())
	} else {
		notificationRepo = notification.NewRepository(a.db)
	}
	notificationOpts := []notification.Option{notification.WithPublisher(a.publisher)}
	if a.cache != nil {
		notificationOpts = append(notificationOpts, notification.WithUnreadCache(a.cache, a.config.Notification.UnreadCacheTTL))
	}
	a.notifications = notification.NewService(notificationRepo, a.logger, notificationOpts...)

	state, err := engagement.NewStateCache(engagementStateSize)
	if err != nil {
		return err
	}
	a.engagements = engagement.NewService(engagement.NewRepository(a.db), a.logger, engagement.WithStateCache(state))
	a.toggler = engagement.NewOptimisticToggler(a.engagements, state)

	a.comments = comment.NewService(
		comment.NewRepository(a.db),
		a.engagements,
		comment.Config{
			CascadeDelete: a.config.Comments.CascadeDelete,
			HideOrphans:   a.config.Comments.HideOrphans,
			MaxBodyLength: a.config.Comments.MaxBodyLength,
			NotifyOnReply: a.config.Comments.NotifyOnReply,
			NotifyOnLike:  a.config.Comments.NotifyOnLike,
		},
		a.logger,
		comment.WithNotifier(a.notifications),
	)

	a.registrations = registration.NewService(registration.NewRepository(a.db), a.notifications, a.logger)

	a.progress = progress.NewTracker(progress.NewRepository(a.db), progress.Config{
		CompletionRatio:    a.config.Progress.CompletionRatio,
		CheckpointInterval: a.config.Progress.CheckpointInterval,
	}, a.logger)

	return nil
}

// Run serves HTTP until ctx is canceled, then shuts the server down gracefully
func (a *App) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.LogInfo("Starting server", map[string]interface{}{"port": a.config.Server.Port})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return a.logger.LogError(err, "Server failed")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.LogInfo("Initiating graceful shutdown", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close releases every connection the app opened
func (a *App) Close() error {
	var errs []error
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if a.pulsar != nil {
		a.pulsar.Close()
	}
	if a.scylla != nil {
		errs = append(errs, a.scylla.Close())
	}
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.database != nil {
		errs = append(errs, a.database.Close())
	}

	err := errors.Join(errs...)
	if err == nil {
		a.logger.LogInfo("Application shut down", nil)
	}
	return err
}
