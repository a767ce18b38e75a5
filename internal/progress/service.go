package progress

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/rehaber/rehaber-backend/internal/errors"
	"github.com/rehaber/rehaber-backend/internal/logger"
)

const (
	defaultContinueLimit = 10
	maxContinueLimit     = 50
)

// Tracker records and serves playback positions
type Tracker interface {
	// Checkpoint stores the latest position. A failed write is logged and returned;
	// callers may ignore it since the next checkpoint supersedes it.
	Checkpoint(ctx context.Context, userID, videoID uuid.UUID, position, duration float64) error
	// Resume returns the stored position unless the video was completed
	Resume(ctx context.Context, userID, videoID uuid.UUID) (float64, bool, error)
	// ContinueWatching lists unfinished videos, most recently watched first
	ContinueWatching(ctx context.Context, userID uuid.UUID, limit int) ([]VideoProgress, error)
	// CheckpointInterval is how often a playing client should call Checkpoint
	CheckpointInterval() time.Duration
}

type trackerImpl struct {
	repo   Repository
	config Config
	logger logger.Logger
	now    func() time.Time
}

// Option configures the tracker
type Option func(*trackerImpl)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(t *trackerImpl) {
		t.now = now
	}
}

// NewTracker creates a new progress tracker. Zero config values fall back to DefaultConfig.
func NewTracker(repo Repository, config Config, log logger.Logger, opts ...Option) Tracker {
	defaults := DefaultConfig()
	if config.CompletionRatio <= 0 || config.CompletionRatio > 1 {
		config.CompletionRatio = defaults.CompletionRatio
	}
	if config.CheckpointInterval <= 0 {
		config.CheckpointInterval = defaults.CheckpointInterval
	}

	t := &trackerImpl{
		repo:   repo,
		config: config,
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func validNumber(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func (t *trackerImpl) Checkpoint(ctx context.Context, userID, videoID uuid.UUID, position, duration float64) error {
	if userID == uuid.Nil {
		return apperrors.ErrUnauthenticated
	}
	if videoID == uuid.Nil {
		return apperrors.NewValidationError("videoId", "video id is required")
	}
	if !validNumber(position) {
		return apperrors.NewValidationError("positionSeconds", "position must be a non-negative number")
	}
	if !validNumber(duration) {
		return apperrors.NewValidationError("durationSeconds", "duration must be a non-negative number")
	}

	// a zero duration means the player has no metadata yet; keep the one already stored
	if duration == 0 {
		stored, err := t.repo.Get(ctx, userID, videoID)
		switch {
		case err == nil:
			duration = stored.DurationSeconds
		case !apperrors.Is(err, apperrors.ErrNotFound):
			t.logFailure(userID, videoID, err)
			return err
		}
	}

	if duration > 0 && position > duration {
		position = duration
	}

	p := &VideoProgress{
		UserID:          userID,
		VideoID:         videoID,
		ProgressSeconds: position,
		DurationSeconds: duration,
		Completed:       duration > 0 && position >= t.config.CompletionRatio*duration,
		LastWatchedAt:   t.now().UTC(),
	}
	if err := t.repo.Upsert(ctx, p); err != nil {
		t.logFailure(userID, videoID, err)
		return err
	}
	return nil
}

func (t *trackerImpl) logFailure(userID, videoID uuid.UUID, err error) {
	t.logger.LogWarn("Progress checkpoint failed", map[string]interface{}{
		"userId":  userID.String(),
		"videoId": videoID.String(),
		"error":   err.Error(),
	})
}

func (t *trackerImpl) Resume(ctx context.Context, userID, videoID uuid.UUID) (float64, bool, error) {
	if userID == uuid.Nil {
		return 0, false, nil
	}

	p, err := t.repo.Get(ctx, userID, videoID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	// a completed video restarts from the beginning
	if p.Completed || p.ProgressSeconds <= 0 {
		return 0, false, nil
	}
	return p.ProgressSeconds, true, nil
}

func (t *trackerImpl) ContinueWatching(ctx context.Context, userID uuid.UUID, limit int) ([]VideoProgress, error) {
	if userID == uuid.Nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if limit <= 0 {
		limit = defaultContinueLimit
	} else if limit > maxContinueLimit {
		limit = maxContinueLimit
	}
	return t.repo.ListUnfinished(ctx, userID, limit)
}

func (t *trackerImpl) CheckpointInterval() time.Duration {
	return t.config.CheckpointInterval
}
