package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rehaber/rehaber-backend/internal/logger"
)

const loggerKey = "logger"

// GetLogger retrieves the request-scoped logger, falling back to fallback
// when the request did not pass through RequestLoggerMiddleware
func GetLogger(c *gin.Context, fallback logger.Logger) logger.Logger {
	if log, exists := c.Get(loggerKey); exists {
		if contextLogger, ok := log.(logger.Logger); ok {
			return contextLogger
		}
	}
	return fallback
}
