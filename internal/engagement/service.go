package engagement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rehaber/rehaber-backend/internal/content"
	apperrors "github.com/rehaber/rehaber-backend/internal/errors"
	"github.com/rehaber/rehaber-backend/internal/logger"
	"golang.org/x/sync/errgroup"
)

// maxToggleAttempts bounds how often a toggle retries after losing an insert race
const maxToggleAttempts = 16

// Service toggles and reads likes and favorites
type Service interface {
	// Toggle flips the engagement for (userID, ref, kind) and returns the new state
	Toggle(ctx context.Context, userID uuid.UUID, ref content.Ref, kind Kind) (bool, error)
	IsEngaged(ctx context.Context, userID uuid.UUID, ref content.Ref, kind Kind) (bool, error)
	Summary(ctx context.Context, viewer uuid.UUID, ref content.Ref) (*Summary, error)
	Counts(ctx context.Context, t content.Type, kind Kind, ids []uuid.UUID) (map[uuid.UUID]int64, error)
	EngagedIDs(ctx context.Context, viewer uuid.UUID, t content.Type, kind Kind, ids []uuid.UUID) (map[uuid.UUID]bool, error)
	ListFavorites(ctx context.Context, userID uuid.UUID, t content.Type) ([]Engagement, error)
	// Purge removes every engagement on the given content
	Purge(ctx context.Context, refs ...content.Ref) (int64, error)
}

// Option configures the service
type Option func(*serviceImpl)

// WithClock overrides the time source used for CreatedAt
func WithClock(now func() time.Time) Option {
	return func(s *serviceImpl) {
		s.now = now
	}
}

// WithStateCache makes Purge drop purged content from the cache
func WithStateCache(cache *StateCache) Option {
	return func(s *serviceImpl) {
		s.state = cache
	}
}

type serviceImpl struct {
	repo   Repository
	logger logger.Logger
	now    func() time.Time
	state  *StateCache
}

// NewService creates a new engagement service
func NewService(repo Repository, log logger.Logger, opts ...Option) Service {
	s := &serviceImpl{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *serviceImpl) validate(userID uuid.UUID, ref content.Ref, kind Kind) error {
	if userID == uuid.Nil {
		return apperrors.ErrUnauthenticated
	}
	if err := ref.Validate(); err != nil {
		return err
	}
	if _, err := ParseKind(string(kind)); err != nil {
		return err
	}
	if !kind.SupportedBy(ref.Type) {
		return apperrors.NewValidationError("kind", fmt.Sprintf("%s cannot be applied to %s content", kind, ref.Type))
	}
	return nil
}

// Toggle deletes the row if present, otherwise inserts it. A failed insert means a
// concurrent toggle created the row first, so the loop starts over and deletes it.
// Each successful call flips the stored state exactly once.
func (s *serviceImpl) Toggle(ctx context.Context, userID uuid.UUID, ref content.Ref, kind Kind) (bool, error) {
	if err := s.validate(userID, ref, kind); err != nil {
		return false, err
	}

	key := Key{UserID: userID, Ref: ref, Kind: kind}
	for attempt := 1; attempt <= maxToggleAttempts; attempt++ {
		removed, err := s.repo.Delete(ctx, key)
		if err != nil {
			return false, err
		}
		if removed {
			s.logDebug("Engagement removed", key, attempt)
			return false, nil
		}

		inserted, err := s.repo.Insert(ctx, &Engagement{
			ID:          uuid.New(),
			UserID:      userID,
			ContentID:   ref.ID,
			ContentType: ref.Type,
			Kind:        kind,
			CreatedAt:   s.now().UTC(),
		})
		if err != nil {
			return false, err
		}
		if inserted {
			s.logDebug("Engagement added", key, attempt)
			return true, nil
		}
	}

	s.logger.LogWarn("Engagement toggle did not settle", map[string]interface{}{
		"userId":  userID.String(),
		"content": ref.String(),
		"kind":    string(kind),
	})
	return false, apperrors.NewStorageError("engagement toggle contended too long", nil)
}

func (s *serviceImpl) logDebug(msg string, key Key, attempt int) {
	s.logger.LogDebug(msg, map[string]interface{}{
		"userId":  key.UserID.String(),
		"content": key.Ref.String(),
		"kind":    string(key.Kind),
		"attempt": attempt,
	})
}

func (s *serviceImpl) IsEngaged(ctx context.Context, userID uuid.UUID, ref content.Ref, kind Kind) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	if err := ref.Validate(); err != nil {
		return false, err
	}
	return s.repo.Exists(ctx, Key{UserID: userID, Ref: ref, Kind: kind})
}

// Summary reads counts and the viewer's own state concurrently. Kinds the content
// type does not support are reported as zero.
func (s *serviceImpl) Summary(ctx context.Context, viewer uuid.UUID, ref content.Ref) (*Summary, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	summary := &Summary{ContentID: ref.ID, ContentType: ref.Type}
	caps := ref.Type.Capabilities()
	g, gctx := errgroup.WithContext(ctx)

	if caps.Likeable {
		g.Go(func() (err error) {
			summary.LikeCount, err = s.repo.Count(gctx, ref, KindLike)
			return err
		})
	}
	if caps.Favoritable {
		g.Go(func() (err error) {
			summary.FavoriteCount, err = s.repo.Count(gctx, ref, KindFavorite)
			return err
		})
	}
	if viewer != uuid.Nil {
		if caps.Likeable {
			g.Go(func() (err error) {
				summary.Liked, err = s.repo.Exists(gctx, Key{UserID: viewer, Ref: ref, Kind: KindLike})
				return err
			})
		}
		if caps.Favoritable {
			g.Go(func() (err error) {
				summary.Favorited, err = s.repo.Exists(gctx, Key{UserID: viewer, Ref: ref, Kind: KindFavorite})
				return err
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *serviceImpl) Counts(ctx context.Context, t content.Type, kind Kind, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	return s.repo.CountMany(ctx, t, kind, ids)
}

func (s *serviceImpl) EngagedIDs(ctx context.Context, viewer uuid.UUID, t content.Type, kind Kind, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.repo.EngagedIDs(ctx, viewer, t, kind, ids)
}

// ListFavorites returns the user's favorites newest first, optionally limited to one content type
func (s *serviceImpl) ListFavorites(ctx context.Context, userID uuid.UUID, t content.Type) ([]Engagement, error) {
	if userID == uuid.Nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if t != "" && !t.Valid() {
		return nil, apperrors.NewValidationError("contentType", fmt.Sprintf("unknown content type %q", string(t)))
	}
	return s.repo.ListByUser(ctx, userID, KindFavorite, t)
}

func (s *serviceImpl) Purge(ctx context.Context, refs ...content.Ref) (int64, error) {
	removed, err := s.repo.DeleteByContent(ctx, refs...)
	if err != nil {
		return 0, err
	}
	if s.state != nil {
		s.state.Forget(refs...)
	}
	if removed > 0 {
		s.logger.LogInfo("Purged engagements", map[string]interface{}{
			"items":   len(refs),
			"removed": removed,
		})
	}
	return removed, nil
}
