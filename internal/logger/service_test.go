package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServiceSelectsBackend(t *testing.T) {
	zapLogger, err := NewService(&Config{Level: InfoLevel, Format: "json", Output: "stdout"})
	require.NoError(t, err)
	assert.IsType(t, &zapLoggerService{}, zapLogger)

	logrusSvc, err := NewService(&Config{Backend: BackendLogrus, Level: DebugLevel})
	require.NoError(t, err)
	assert.IsType(t, &logrusLogger{}, logrusSvc)

	_, err = NewService(&Config{Backend: "syslog"})
	assert.Error(t, err)
}

func TestLogErrorReturnsError(t *testing.T) {
	for _, backend := range []Backend{BackendZap, BackendLogrus} {
		log, err := NewService(&Config{Backend: backend, Level: ErrorLevel, Format: "json", Output: "stdout"})
		require.NoError(t, err)

		cause := errors.New("boom")
		assert.Equal(t, cause, log.LogError(cause, "failed"))
		assert.Nil(t, log.LogError(nil, "nothing"))
		assert.Equal(t, cause, log.WithFields(map[string]interface{}{"userID": "u1"}).LogErrorf(cause, "failed %d", 1))
	}
}

func TestMergeFields(t *testing.T) {
	merged := mergeFields(map[string]interface{}{"a": 1, "b": 2}, map[string]interface{}{"b": 3})
	assert.Equal(t, map[string]interface{}{"a": 1, "b": 3}, merged)
}

func TestInvalidLevel(t *testing.T) {
	_, err := NewLogger(&Config{Level: "loud"})
	assert.Error(t, err)
}

func TestRequestIDContext(t *testing.T) {
	_, ok := RequestIDFromContext(context.Background())
	assert.False(t, ok)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	id, ok := RequestIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "req-1", id)
}
