package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *RedisService {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping Redis integration test")
	}

	service, err := NewRedisService(context.Background(), &Config{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { service.Close() })
	return service
}

func TestRedisServiceRoundTrip(t *testing.T) {
	service := newTestRedis(t)
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	_, err := service.Get(ctx, key)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, service.Set(ctx, key, 7, time.Minute))
	value, err := service.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "7", value)

	require.NoError(t, service.Delete(ctx, key))
	_, err = service.Get(ctx, key)
	assert.ErrorIs(t, err, ErrMiss)
	assert.NoError(t, service.Delete(ctx))
}

func TestRedisServiceIncr(t *testing.T) {
	service := newTestRedis(t)
	ctx := context.Background()
	key := "test:counter:" + uuid.NewString()
	t.Cleanup(func() { service.Delete(ctx, key) })

	first, err := service.Incr(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	second, err := service.Incr(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second)
}

func TestNewRedisServiceUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_, err := NewRedisService(ctx, &Config{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
