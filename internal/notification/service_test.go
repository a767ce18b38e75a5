package notification

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rehaber/rehaber-backend/internal/cache"
	apperrors "github.com/rehaber/rehaber-backend/internal/errors"
	"github.com/rehaber/rehaber-backend/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *MockCache) Incr(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCache) Close() error {
	return m.Called().Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, n *Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

func newTestService(t *testing.T, opts ...Option) (Service, *testhelper.TestLogger) {
	log := testhelper.NewTestLogger(false)
	return NewService(NewRepository(testhelper.SetupTestDB(t)), log, opts...), log
}

func TestAppendAndList(t *testing.T) {
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))
	ctx := context.Background()
	user := uuid.New()
	eventID := uuid.New()

	require.NoError(t, svc.Append(ctx, New(user, TypeEvent, "Registration confirmed", "See you there", &eventID)))
	require.NoError(t, svc.Append(ctx, New(user, TypeComment, "New reply", "Someone replied", nil)))
	require.NoError(t, svc.Append(ctx, New(uuid.New(), TypeSystem, "Other user", "", nil)))

	list, err := svc.List(ctx, user, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, TypeComment, list[0].Type)
	assert.Equal(t, TypeEvent, list[1].Type)
	require.NotNil(t, list[1].RelatedID)
	assert.Equal(t, eventID, *list[1].RelatedID)
	assert.False(t, list[0].Read)

	page, err := svc.List(ctx, user, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, TypeEvent, page[0].Type)
}

func TestAppendValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.Append(ctx, New(uuid.Nil, TypeSystem, "t", "m", nil))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	err = svc.Append(ctx, New(uuid.New(), "digest", "t", "m", nil))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	err = svc.Append(ctx, New(uuid.New(), TypeSystem, "", "m", nil))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestMarkRead(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	user := uuid.New()
	n := New(user, TypeLike, "New like", "", nil)
	require.NoError(t, svc.Append(ctx, n))

	count, err := svc.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	assert.ErrorIs(t, svc.MarkRead(ctx, uuid.New(), n.ID), apperrors.ErrForbidden)
	assert.ErrorIs(t, svc.MarkRead(ctx, user, uuid.New()), apperrors.ErrNotFound)
	assert.ErrorIs(t, svc.MarkRead(ctx, uuid.Nil, n.ID), apperrors.ErrUnauthenticated)

	require.NoError(t, svc.MarkRead(ctx, user, n.ID))
	require.NoError(t, svc.MarkRead(ctx, user, n.ID), "marking twice is a no-op")

	count, err = svc.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkAllRead(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	user := uuid.New()
	other := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Append(ctx, New(user, TypeSystem, "Announcement", "", nil)))
	}
	require.NoError(t, svc.Append(ctx, New(other, TypeSystem, "Announcement", "", nil)))

	updated, err := svc.MarkAllRead(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)

	count, err := svc.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = svc.UnreadCount(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	updated, err = svc.MarkAllRead(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestUnreadCountUsesCache(t *testing.T) {
	mockCache := new(MockCache)
	svc, _ := newTestService(t, WithUnreadCache(mockCache, time.Minute))
	ctx := context.Background()
	user := uuid.New()
	version := versionKey(user)

	mockCache.On("Get", mock.Anything, version).Return("", cache.ErrMiss).Once()
	mockCache.On("Get", mock.Anything, unreadKey(user, "0")).Return("", cache.ErrMiss).Once()
	mockCache.On("Set", mock.Anything, unreadKey(user, "0"), "0", time.Minute).Return(nil).Once()
	count, err := svc.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, count)

	mockCache.On("Get", mock.Anything, version).Return("3", nil).Once()
	mockCache.On("Get", mock.Anything, unreadKey(user, "3")).Return("7", nil).Once()
	count, err = svc.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)

	mockCache.On("Incr", mock.Anything, version).Return(int64(4), nil).Once()
	require.NoError(t, svc.Append(ctx, New(user, TypeSystem, "Hello", "", nil)))

	mockCache.AssertExpectations(t)
}

func TestCacheFailuresFallBackToStore(t *testing.T) {
	mockCache := new(MockCache)
	svc, log := newTestService(t, WithUnreadCache(mockCache, time.Minute))
	ctx := context.Background()
	user := uuid.New()

	mockCache.On("Incr", mock.Anything, mock.Anything).Return(int64(0), errors.New("redis down"))
	mockCache.On("Get", mock.Anything, mock.Anything).Return("", errors.New("redis down"))

	require.NoError(t, svc.Append(ctx, New(user, TypeSystem, "Hello", "", nil)))
	count, err := svc.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Len(t, log.GetWarnMessages(), 2)
	mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// memoryCache is a map-backed cache.Service
type memoryCache struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string]string)}
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = fmt.Sprint(value)
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.values[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return value, nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.values, key)
	}
	return nil
}

func (c *memoryCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, _ := strconv.ParseInt(c.values[key], 10, 64)
	current++
	c.values[key] = strconv.FormatInt(current, 10)
	return current, nil
}

func (c *memoryCache) Close() error { return nil }

// interleavingRepository runs afterCount once, between reading the unread
// count and returning it
type interleavingRepository struct {
	Repository
	afterCount func()
}

func (r *interleavingRepository) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := r.Repository.GetUnreadCount(ctx, userID)
	if hook := r.afterCount; hook != nil {
		r.afterCount = nil
		hook()
	}
	return count, err
}

func TestUnreadCountWriteDuringFillIsNotCached(t *testing.T) {
	ctx := context.Background()
	user := uuid.New()
	repo := &interleavingRepository{Repository: NewRepository(testhelper.SetupTestDB(t))}
	svc := NewService(repo, testhelper.NewTestLogger(false), WithUnreadCache(newMemoryCache(), time.Minute))

	repo.afterCount = func() {
		require.NoError(t, svc.Append(ctx, New(user, TypeComment, "New reply", "", nil)))
	}

	first, err := svc.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, first, "the count read before the append")

	list, err := svc.List(ctx, user, MaxPageSize, 0)
	require.NoError(t, err)
	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}

	count, err := svc.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(unread), count)
	assert.Equal(t, int64(1), count)

	// the second count is cached and the next write still invalidates it
	require.NoError(t, svc.MarkRead(ctx, user, list[0].ID))
	count, err = svc.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPublishFailureDoesNotFailAppend(t *testing.T) {
	publisher := new(MockPublisher)
	svc, log := newTestService(t, WithPublisher(publisher))
	ctx := context.Background()
	user := uuid.New()

	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(n *Notification) bool {
		return n.UserID == user
	})).Return(errors.New("broker unavailable")).Once()

	require.NoError(t, svc.Append(ctx, New(user, TypeEvent, "Registration confirmed", "", nil)))
	publisher.AssertExpectations(t)

	list, err := svc.List(ctx, user, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	require.Len(t, log.GetWarnMessages(), 1)
	assert.Equal(t, "Failed to publish notification", log.GetWarnMessages()[0].Message)
}
