package testhelper

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rehaber/rehaber-backend/internal/auth"
	httpHandler "github.com/rehaber/rehaber-backend/internal/http"
)

// TestAPI is a gin engine with real JWT identity resolution for handler tests
type TestAPI struct {
	Router       *gin.Engine
	API          *gin.RouterGroup
	Tokens       *auth.JWTService
	Response     httpHandler.ResponseHandler
	RequireUser  gin.HandlerFunc
	OptionalUser gin.HandlerFunc
}

// NewTestAPI creates an engine with an /api/v1 group
func NewTestAPI() *TestAPI {
	gin.SetMode(gin.TestMode)

	cfg := &auth.Config{}
	cfg.JWT.Secret = "test-secret-" + uuid.NewString()
	cfg.JWT.Issuer = "rehaber-test"
	cfg.JWT.AccessTokenTTL = time.Hour
	tokens := auth.NewJWTService(cfg)

	response := httpHandler.NewResponseHandler(NewTestLogger(false))
	router := gin.New()

	return &TestAPI{
		Router:       router,
		API:          router.Group("/api/v1"),
		Tokens:       tokens,
		Response:     response,
		RequireUser:  auth.RequireUser(tokens, response),
		OptionalUser: auth.OptionalUser(tokens),
	}
}

// Do performs a request as userID (anonymous when uuid.Nil) with an optional JSON body
func (a *TestAPI) Do(t *testing.T, method, path string, userID uuid.UUID, body interface{}) (*httptest.ResponseRecorder, httpHandler.Response) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != uuid.Nil {
		token, err := a.Tokens.GenerateAccessToken(userID)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	var resp httpHandler.Response
	if w.Code != http.StatusNoContent {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, resp
}

// DecodeData converts the envelope's data field into target
func DecodeData(t *testing.T, resp httpHandler.Response, target interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("failed to re-encode response data: %v", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		t.Fatalf("failed to decode response data: %v", err)
	}
}
