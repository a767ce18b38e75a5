package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	cfg := &Config{}
	cfg.JWT.Secret = "test-secret-" + uuid.NewString()
	cfg.JWT.Issuer = "rehaber"
	cfg.JWT.AccessTokenTTL = time.Hour
	return cfg
}

func TestGenerateAndResolve(t *testing.T) {
	service := NewJWTService(testConfig())
	userID := uuid.New()

	token, err := service.GenerateAccessToken(userID)
	require.NoError(t, err)

	resolved, err := service.ResolveUser(token)
	require.NoError(t, err)
	assert.Equal(t, userID, resolved)

	_, err = service.GenerateAccessToken(uuid.Nil)
	assert.Error(t, err)
}

func TestResolveRejectsBadTokens(t *testing.T) {
	service := NewJWTService(testConfig())
	token, err := service.GenerateAccessToken(uuid.New())
	require.NoError(t, err)

	other := NewJWTService(testConfig())
	_, err = other.ResolveUser(token)
	assert.Error(t, err, "different secret")

	_, err = service.ResolveUser("not-a-token")
	assert.Error(t, err)

	expired := NewJWTService(service.config)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := expired.GenerateAccessToken(uuid.New())
	require.NoError(t, err)
	_, err = service.ResolveUser(stale)
	assert.Error(t, err, "expired")
}

type recordingResponder struct{ called bool }

func (r *recordingResponder) UnauthorizedResponse(c *gin.Context, message string) {
	r.called = true
	c.JSON(http.StatusUnauthorized, gin.H{"message": message})
}

func TestRequireServiceToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	responder := &recordingResponder{}
	router := gin.New()
	router.POST("/internal", RequireServiceToken("s3cret", responder), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.POST("/disabled", RequireServiceToken("", responder), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		path   string
		header string
		status int
	}{
		{"/internal", "Bearer s3cret", http.StatusNoContent},
		{"/internal", "Bearer s3cre", http.StatusUnauthorized},
		{"/internal", "", http.StatusUnauthorized},
		{"/disabled", "Bearer ", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, tt.path, nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		router.ServeHTTP(w, req)
		assert.Equal(t, tt.status, w.Code, "%s %q", tt.path, tt.header)
	}
	assert.True(t, responder.called)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := NewJWTService(testConfig())
	userID := uuid.New()
	token, err := service.GenerateAccessToken(userID)
	require.NoError(t, err)

	responder := &recordingResponder{}
	router := gin.New()
	router.GET("/required", RequireUser(service, responder), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c).String())
	})
	router.GET("/optional", OptionalUser(service), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c).String())
	})

	tests := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"required with token", "/required", "Bearer " + token, http.StatusOK, userID.String()},
		{"required without token", "/required", "", http.StatusUnauthorized, ""},
		{"required with garbage", "/required", "Bearer nope", http.StatusUnauthorized, ""},
		{"required wrong scheme", "/required", "Basic " + token, http.StatusUnauthorized, ""},
		{"optional anonymous", "/optional", "", http.StatusOK, uuid.Nil.String()},
		{"optional invalid token", "/optional", "Bearer nope", http.StatusOK, uuid.Nil.String()},
		{"optional with token", "/optional", "bearer " + token, http.StatusOK, userID.String()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
	assert.True(t, responder.called)
}
