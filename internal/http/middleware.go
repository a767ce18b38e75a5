package http

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rehaber/rehaber-backend/internal/http/middleware"
	"github.com/rehaber/rehaber-backend/internal/logger"
)

// CORSMiddleware handles Cross-Origin Resource Sharing (CORS). An empty
// origin list allows every origin without credentials.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	config := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowedOrigins
		config.AllowCredentials = true
	}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "Cache-Control", "X-Requested-With", "X-Request-ID"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.ExposeHeaders = []string{"X-Request-ID"}
	config.MaxAge = 12 * time.Hour
	return cors.New(config)
}

// RecoveryMiddleware recovers from any panics and logs the error with the
// request-scoped logger when one is set
func RecoveryMiddleware(responseHandler ResponseHandler, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				middleware.GetLogger(c, log).
					WithFields(map[string]interface{}{"path": c.Request.URL.Path}).
					LogError(fmt.Errorf("panic: %v", recovered), "Panic recovered in HTTP handler")
				responseHandler.InternalErrorResponse(c, "An unexpected error occurred", nil)
				c.Abort()
			}
		}()
		c.Next()
	}
}
