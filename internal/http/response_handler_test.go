package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	apperrors "github.com/rehaber/rehaber-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) LogInfo(string, map[string]interface{}) {}
func (nopLogger) LogError(err error, _ string) error     { return err }

func serve(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestServiceErrorResponse(t *testing.T) {
	h := NewResponseHandler(nopLogger{})

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unauthenticated", apperrors.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", apperrors.NewKindError(apperrors.ErrForbidden, "userId", apperrors.ErrMsgNotAuthor), http.StatusForbidden, "FORBIDDEN"},
		{"not found", apperrors.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"empty body", apperrors.NewKindError(apperrors.ErrEmptyBody, "body", apperrors.ErrMsgEmptyBody), http.StatusBadRequest, "EMPTY_BODY"},
		{"invalid parent", apperrors.NewKindError(apperrors.ErrInvalidParent, "parentId", apperrors.ErrMsgReplyToReply), http.StatusBadRequest, "INVALID_PARENT"},
		{"validation", apperrors.NewValidationError("contentType", "unknown content type"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"store unavailable", apperrors.NewStorageError("insert failed", errors.New("conn refused")), http.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := serve(t, func(c *gin.Context) { h.ServiceErrorResponse(c, tt.err) })
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestRetryableErrorsCarryRetryAfter(t *testing.T) {
	h := NewResponseHandler(nopLogger{})

	w, _ := serve(t, func(c *gin.Context) {
		h.ServiceErrorResponse(c, apperrors.NewStorageError("count failed", errors.New("timeout")))
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))

	w, _ = serve(t, func(c *gin.Context) { h.ServiceErrorResponse(c, errors.New("boom")) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Retry-After"))

	w, _ = serve(t, func(c *gin.Context) { h.ServiceErrorResponse(c, apperrors.ErrNotFound) })
	assert.Empty(t, w.Header().Get("Retry-After"))
}

func TestValidationErrorCarriesField(t *testing.T) {
	h := NewResponseHandler(nopLogger{})
	_, resp := serve(t, func(c *gin.Context) {
		h.ServiceErrorResponse(c, apperrors.NewValidationError("position", "must not be negative"))
	})
	assert.Equal(t, "position", resp.Error.Field)
	assert.Equal(t, "must not be negative", resp.Error.Message)
}

func TestSuccessAndCreated(t *testing.T) {
	h := NewResponseHandler(nopLogger{})

	w, resp := serve(t, func(c *gin.Context) { h.SuccessResponse(c, map[string]bool{"engaged": true}, "ok") })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, map[string]interface{}{"engaged": true}, resp.Data)

	w, resp = serve(t, func(c *gin.Context) { h.CreatedResponse(c, nil, "created") })
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "created", resp.Message)
}
