package comment

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rehaber/rehaber-backend/internal/content"
	"github.com/rehaber/rehaber-backend/internal/engagement"
	apperrors "github.com/rehaber/rehaber-backend/internal/errors"
	"github.com/rehaber/rehaber-backend/internal/notification"
	"github.com/rehaber/rehaber-backend/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []*notification.Notification
	err  error
}

func (r *recordingNotifier) Append(_ context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) Sent() []*notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*notification.Notification(nil), r.sent...)
}

type fixture struct {
	db          *gorm.DB
	service     Service
	engagements engagement.Service
	notifier    *recordingNotifier
	logger      *testhelper.TestLogger
}

func newFixture(t *testing.T, cfg Config) *fixture {
	db := testhelper.SetupTestDB(t)
	log := testhelper.NewTestLogger(false)
	engagements := engagement.NewService(engagement.NewRepository(db), log)
	notifier := &recordingNotifier{}

	clock := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	svc := NewService(NewRepository(db), engagements, cfg, log,
		WithNotifier(notifier),
		WithClock(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			clock = clock.Add(time.Second)
			return clock
		}))

	return &fixture{db: db, service: svc, engagements: engagements, notifier: notifier, logger: log}
}

func defaultConfig() Config {
	return Config{MaxBodyLength: 2000, NotifyOnReply: true, NotifyOnLike: true}
}

func TestAddValidation(t *testing.T) {
	f := newFixture(t, defaultConfig())
	ctx := context.Background()
	user := uuid.New()
	video := content.NewRef(uuid.New(), content.TypeVideo)

	_, err := f.service.Add(ctx, uuid.Nil, video, "hello", nil)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = f.service.Add(ctx, user, video, "   \n\t ", nil)
	assert.ErrorIs(t, err, apperrors.ErrEmptyBody)

	_, err = f.service.Add(ctx, user, video, strings.Repeat("a", 2001), nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = f.service.Add(ctx, user, content.NewRef(uuid.New(), content.TypeComment), "hello", nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	missing := uuid.New()
	_, err = f.service.Add(ctx, user, video, "hello", &missing)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	c, err := f.service.Add(ctx, user, video, "  hello  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", c.Body)
	assert.Equal(t, video, c.Ref())
}

func TestAddReplyRules(t *testing.T) {
	f := newFixture(t, defaultConfig())
	ctx := context.Background()
	author := uuid.New()
	replier := uuid.New()
	news := content.NewRef(uuid.New(), content.TypeNews)

	top, err := f.service.Add(ctx, author, news, "first", nil)
	require.NoError(t, err)

	reply, err := f.service.Add(ctx, replier, news, "a reply", &top.ID)
	require.NoError(t, err)
	assert.Equal(t, top.ID, *reply.ParentID)

	_, err = f.service.Add(ctx, author, news, "too deep", &reply.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParent)

	elsewhere := content.NewRef(uuid.New(), content.TypeNews)
	_, err = f.service.Add(ctx, author, elsewhere, "wrong thread", &top.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParent)

	// the author replying to themself is not notified
	_, err = f.service.Add(ctx, author, news, "self reply", &top.ID)
	require.NoError(t, err)

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, author, sent[0].UserID)
	assert.Equal(t, notification.TypeComment, sent[0].Type)
	assert.Equal(t, reply.ID, *sent[0].RelatedID)
}

func TestListOrdering(t *testing.T) {
	f := newFixture(t, defaultConfig())
	ctx := context.Background()
	user := uuid.New()
	event := content.NewRef(uuid.New(), content.TypeEvent)

	older, err := f.service.Add(ctx, user, event, "older", nil)
	require.NoError(t, err)
	newer, err := f.service.Add(ctx, user, event, "newer", nil)
	require.NoError(t, err)
	r1, err := f.service.Add(ctx, user, event, "reply one", &older.ID)
	require.NoError(t, err)
	r2, err := f.service.Add(ctx, user, event, "reply two", &older.ID)
	require.NoError(t, err)

	threads, err := f.service.List(ctx, event, uuid.Nil)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, newer.ID, threads[0].ID)
	assert.Equal(t, older.ID, threads[1].ID)
	require.Len(t, threads[1].Replies, 2)
	assert.Equal(t, r1.ID, threads[1].Replies[0].ID)
	assert.Equal(t, r2.ID, threads[1].Replies[1].ID)

	empty, err := f.service.List(ctx, content.NewRef(uuid.New(), content.TypeVideo), uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLikesAreDerived(t *testing.T) {
	f := newFixture(t, defaultConfig())
	ctx := context.Background()
	author := uuid.New()
	viewer := uuid.New()
	video := content.NewRef(uuid.New(), content.TypeVideo)

	c, err := f.service.Add(ctx, author, video, "like me", nil)
	require.NoError(t, err)

	liked, err := f.service.ToggleLike(ctx, viewer, c.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	_, err = f.service.ToggleLike(ctx, uuid.New(), c.ID)
	require.NoError(t, err)

	threads, err := f.service.List(ctx, video, viewer)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, int64(2), threads[0].LikeCount)
	assert.True(t, threads[0].Liked)

	liked, err = f.service.ToggleLike(ctx, viewer, c.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	threads, err = f.service.List(ctx, video, viewer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), threads[0].LikeCount)
	assert.False(t, threads[0].Liked)

	// two likes turned on, one turned off: only the first two notify
	sent := f.notifier.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, notification.TypeLike, sent[0].Type)

	_, err = f.service.ToggleLike(ctx, viewer, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = f.service.ToggleLike(ctx, uuid.Nil, c.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestDeleteKeepsOrphanedReplies(t *testing.T) {
	f := newFixture(t, defaultConfig())
	ctx := context.Background()
	author := uuid.New()
	other := uuid.New()
	video := content.NewRef(uuid.New(), content.TypeVideo)

	top, err := f.service.Add(ctx, author, video, "top", nil)
	require.NoError(t, err)
	reply, err := f.service.Add(ctx, other, video, "reply", &top.ID)
	require.NoError(t, err)
	_, err = f.service.ToggleLike(ctx, other, top.ID)
	require.NoError(t, err)

	_, err = f.service.Delete(ctx, other, top.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = f.service.Delete(ctx, author, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	deleted, err := f.service.Delete(ctx, author, top.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	threads, err := f.service.List(ctx, video, uuid.Nil)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, reply.ID, threads[0].ID)
	assert.True(t, threads[0].Orphaned)

	count, err := f.engagements.Summary(ctx, uuid.Nil, top.LikeRef())
	require.NoError(t, err)
	assert.Zero(t, count.LikeCount)
}

func TestHideOrphans(t *testing.T) {
	cfg := defaultConfig()
	cfg.HideOrphans = true
	f := newFixture(t, cfg)
	ctx := context.Background()
	author := uuid.New()
	event := content.NewRef(uuid.New(), content.TypeEvent)

	top, err := f.service.Add(ctx, author, event, "top", nil)
	require.NoError(t, err)
	_, err = f.service.Add(ctx, uuid.New(), event, "reply", &top.ID)
	require.NoError(t, err)
	other, err := f.service.Add(ctx, uuid.New(), event, "another thread", nil)
	require.NoError(t, err)

	_, err = f.service.Delete(ctx, author, top.ID)
	require.NoError(t, err)

	threads, err := f.service.List(ctx, event, uuid.Nil)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, other.ID, threads[0].ID)
	assert.False(t, threads[0].Orphaned)

	_, err = f.service.Delete(ctx, uuid.Nil, other.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestDeleteCascade(t *testing.T) {
	cfg := defaultConfig()
	cfg.CascadeDelete = true
	f := newFixture(t, cfg)
	ctx := context.Background()
	author := uuid.New()
	news := content.NewRef(uuid.New(), content.TypeNews)

	top, err := f.service.Add(ctx, author, news, "top", nil)
	require.NoError(t, err)
	reply, err := f.service.Add(ctx, uuid.New(), news, "reply", &top.ID)
	require.NoError(t, err)
	_, err = f.service.ToggleLike(ctx, author, reply.ID)
	require.NoError(t, err)

	_, err = f.service.Delete(ctx, author, top.ID)
	require.NoError(t, err)

	threads, err := f.service.List(ctx, news, uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, threads)

	summary, err := f.engagements.Summary(ctx, uuid.Nil, reply.LikeRef())
	require.NoError(t, err)
	assert.Zero(t, summary.LikeCount)
}

func TestNotificationFailureIsSwallowed(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.notifier.err = errors.New("store offline")
	ctx := context.Background()
	video := content.NewRef(uuid.New(), content.TypeVideo)

	top, err := f.service.Add(ctx, uuid.New(), video, "top", nil)
	require.NoError(t, err)
	_, err = f.service.Add(ctx, uuid.New(), video, "reply", &top.ID)
	require.NoError(t, err)
	assert.Len(t, f.logger.GetWarnMessages(), 1)
}

func TestNotificationsDisabled(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	video := content.NewRef(uuid.New(), content.TypeVideo)

	top, err := f.service.Add(ctx, uuid.New(), video, "top", nil)
	require.NoError(t, err)
	_, err = f.service.Add(ctx, uuid.New(), video, "reply", &top.ID)
	require.NoError(t, err)
	_, err = f.service.ToggleLike(ctx, uuid.New(), top.ID)
	require.NoError(t, err)
	assert.Empty(t, f.notifier.Sent())
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short"))
	long := strings.Repeat("ş", 100)
	p := preview(long)
	assert.Len(t, []rune(p), previewLength)
	assert.True(t, strings.HasSuffix(p, "..."))
}
