package main

import (
	"github.com/gin-gonic/gin"
	"github.com/rehaber/rehaber-backend/internal/auth"
	"github.com/rehaber/rehaber-backend/internal/comment"
	"github.com/rehaber/rehaber-backend/internal/engagement"
	"github.com/rehaber/rehaber-backend/internal/health"
	httpHandler "github.com/rehaber/rehaber-backend/internal/http"
	"github.com/rehaber/rehaber-backend/internal/http/middleware"
	"github.com/rehaber/rehaber-backend/internal/notification"
	"github.com/rehaber/rehaber-backend/internal/progress"
	"github.com/rehaber/rehaber-backend/internal/registration"
)

func (a *App) setupRoutes() {
	if a.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.RequestLoggerMiddleware(a.logger),
		httpHandler.RecoveryMiddleware(a.response, a.logger),
		httpHandler.CORSMiddleware(a.config.Server.CORSOrigins),
	)

	router.GET("/health", health.NewHandler(a.response, a.healthCheckers()...).HandleHealthCheck)

	requireUser := auth.RequireUser(a.tokens, a.response)
	optionalUser := auth.OptionalUser(a.tokens)

	api := router.Group("/api/v1")
	engagement.NewHandler(a.engagements, a.toggler, a.response).RegisterRoutes(api, requireUser, optionalUser)
	comment.NewHandler(a.comments, a.response).RegisterRoutes(api, requireUser, optionalUser)
	registrations := registration.NewHandler(a.registrations, a.response)
	registrations.RegisterRoutes(api, requireUser, optionalUser)
	progress.NewHandler(a.progress, a.response).RegisterRoutes(api, requireUser)
	notification.NewHandler(a.notifications, a.response).RegisterRoutes(api, requireUser)

	if token := a.config.Auth.SchedulerToken; token != "" {
		registrations.RegisterSchedulerRoutes(router.Group("/internal", auth.RequireServiceToken(token, a.response)))
	}

	a.router = router
}

func (a *App) healthCheckers() []health.Checker {
	checkers := []health.Checker{
		health.CheckFunc{Component: "database", Fn: a.database.Ping},
	}
	if a.cache != nil {
		checkers = append(checkers, health.CheckFunc{Component: "redis", Fn: a.cache.Ping})
	}
	if a.scylla != nil {
		checkers = append(checkers, health.CheckFunc{Component: "scylladb", Fn: a.scylla.Ping})
	}
	return checkers
}
