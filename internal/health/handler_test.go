package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	httpHandler "github.com/rehaber/rehaber-backend/internal/http"
	"github.com/rehaber/rehaber-backend/testhelper"
	"github.com/stretchr/testify/assert"
)

func healthy(name string) Checker {
	return CheckFunc{Component: name, Fn: func(context.Context) error { return nil }}
}

func serveHealth(checkers ...Checker) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(httpHandler.NewResponseHandler(testhelper.NewTestLogger(false)), checkers...)
	router.GET("/health", handler.HandleHealthCheck)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	return w
}

func TestHealthCheckAllHealthy(t *testing.T) {
	w := serveHealth(healthy("database"), healthy("redis"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
}

func TestHealthCheckDegraded(t *testing.T) {
	down := CheckFunc{Component: "redis", Fn: func(context.Context) error { return errors.New("connection refused") }}

	w := serveHealth(healthy("database"), down)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCheckReportsComponents(t *testing.T) {
	down := CheckFunc{Component: "scylladb", Fn: func(context.Context) error { return errors.New("timeout") }}
	h := NewHandler(nil, healthy("database"), down)

	status := h.Check(context.Background())
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "ok", status.Components["database"])
	assert.Equal(t, "timeout", status.Components["scylladb"])
}
