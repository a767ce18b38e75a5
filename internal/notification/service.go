package notification

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rehaber/rehaber-backend/internal/cache"
	apperrors "github.com/rehaber/rehaber-backend/internal/errors"
	"github.com/rehaber/rehaber-backend/internal/logger"
)

const (
	// DefaultPageSize is used when List is called without a limit
	DefaultPageSize = 20
	// MaxPageSize caps List
	MaxPageSize = 100

	unreadKeyPrefix = "notifications:unread:"
)

// Service is the per-user notification center
type Service interface {
	// Append stores n and then publishes it best-effort
	Append(ctx context.Context, n *Notification) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type serviceImpl struct {
	repo      Repository
	logger    logger.Logger
	cache     cache.Service
	cacheTTL  time.Duration
	publisher Publisher
	now       func() time.Time
}

// Option configures the notification service
type Option func(*serviceImpl)

// WithUnreadCache caches unread counts for ttl
func WithUnreadCache(c cache.Service, ttl time.Duration) Option {
	return func(s *serviceImpl) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithPublisher sets the broker publisher
func WithPublisher(p Publisher) Option {
	return func(s *serviceImpl) {
		s.publisher = p
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *serviceImpl) {
		s.now = now
	}
}

// NewService creates a new notification service
func NewService(repo Repository, log logger.Logger, opts ...Option) Service {
	s := &serviceImpl{
		repo:      repo,
		logger:    log,
		publisher: NopPublisher{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *serviceImpl) Append(ctx context.Context, n *Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}
	n.Read = false

	if err := s.repo.SaveNotification(ctx, n); err != nil {
		return err
	}
	s.invalidate(ctx, n.UserID)

	if err := s.publisher.Publish(ctx, n); err != nil {
		s.logger.LogWarn("Failed to publish notification", map[string]interface{}{
			"notificationId": n.ID.String(),
			"error":          err.Error(),
		})
	}
	return nil
}

func (s *serviceImpl) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	if userID == uuid.Nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if limit <= 0 {
		limit = DefaultPageSize
	} else if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.GetNotificationsByUserID(ctx, userID, limit, offset)
}

// MarkRead is idempotent. Marking someone else's notification is Forbidden.
func (s *serviceImpl) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	if userID == uuid.Nil {
		return apperrors.ErrUnauthenticated
	}

	n, err := s.repo.GetNotification(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return apperrors.NewKindError(apperrors.ErrForbidden, "id", apperrors.ErrMsgNotRecipient)
	}
	if n.Read {
		return nil
	}

	changed, err := s.repo.MarkAsRead(ctx, n)
	if err != nil {
		return err
	}
	if changed {
		s.invalidate(ctx, userID)
	}
	return nil
}

func (s *serviceImpl) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, apperrors.ErrUnauthenticated
	}

	updated, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, userID)
	return updated, nil
}

// UnreadCount is always derived from the repository. Cached copies live under
// a per-user version; every write bumps the version, so a fill that raced
// with a write lands on a key no later read looks at.
func (s *serviceImpl) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, apperrors.ErrUnauthenticated
	}

	key, cached := s.countKey(ctx, userID)
	if cached {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			if count, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
				return count, nil
			}
		} else if !apperrors.Is(err, cache.ErrMiss) {
			s.logger.LogWarn("Unread cache read failed", map[string]interface{}{"error": err.Error()})
		}
	}

	count, err := s.repo.GetUnreadCount(ctx, userID)
	if err != nil {
		return 0, err
	}

	if cached {
		if err := s.cache.Set(ctx, key, strconv.FormatInt(count, 10), s.cacheTTL); err != nil {
			s.logger.LogWarn("Unread cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return count, nil
}

// countKey returns the cache key of the current unread-count version. It
// reports false when there is no cache or the version cannot be read.
func (s *serviceImpl) countKey(ctx context.Context, userID uuid.UUID) (string, bool) {
	if s.cache == nil {
		return "", false
	}

	version := "0"
	raw, err := s.cache.Get(ctx, versionKey(userID))
	switch {
	case err == nil:
		version = raw
	case !apperrors.Is(err, cache.ErrMiss):
		s.logger.LogWarn("Unread cache version read failed", map[string]interface{}{"error": err.Error()})
		return "", false
	}
	return unreadKey(userID, version), true
}

func (s *serviceImpl) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, versionKey(userID)); err != nil {
		s.logger.LogWarn("Unread cache invalidation failed", map[string]interface{}{
			"userId": userID.String(),
			"error":  err.Error(),
		})
	}
}

func versionKey(userID uuid.UUID) string {
	return unreadKeyPrefix + userID.String() + ":version"
}

func unreadKey(userID uuid.UUID, version string) string {
	return unreadKeyPrefix + userID.String() + ":v" + version
}
