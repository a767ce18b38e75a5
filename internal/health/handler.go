package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const checkTimeout = 2 * time.Second

// Status is the body of a health response
type Status struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// Handler handles health check related endpoints
type Handler struct {
	responseHandler ResponseHandler
	checkers        []Checker
}

// NewHandler creates a new health check handler
func NewHandler(responseHandler ResponseHandler, checkers ...Checker) *Handler {
	return &Handler{
		responseHandler: responseHandler,
		checkers:        checkers,
	}
}

// @Summary Health check endpoint
// @Description Checks the database and the optional cache and notification store
// @Tags health
// @Produce json
// @Success 200 {object} Status "Health check successful"
// @Failure 503 {object} Status "A dependency is unavailable"
// @Router /health [get]
func (h *Handler) HandleHealthCheck(c *gin.Context) {
	status := h.Check(c.Request.Context())
	if status.Status != "ok" {
		h.responseHandler.ErrorResponse(c, http.StatusServiceUnavailable, "UNHEALTHY",
			"One or more dependencies are unavailable", fmt.Errorf("%v", status.Components))
		return
	}
	h.responseHandler.SuccessResponse(c, status, "Health check successful")
}

// Check runs every checker concurrently
func (h *Handler) Check(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		status = Status{Status: "ok", Components: make(map[string]string, len(h.checkers))}
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, checker := range h.checkers {
		g.Go(func() error {
			result := "ok"
			if err := checker.Check(gctx); err != nil {
				result = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			status.Components[checker.Name()] = result
			if result != "ok" {
				status.Status = "degraded"
			}
			return nil
		})
	}
	_ = g.Wait()
	return status
}
