package progress

import (
	"context"
	"errors"

	"github.com/google/uuid"
	apperrors "github.com/rehaber/rehaber-backend/internal/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the gateway to the video_progress table
type Repository interface {
	// Upsert writes p, replacing any row for the same user and video
	Upsert(ctx context.Context, p *VideoProgress) error
	// Get returns ErrNotFound when the user has no progress on the video
	Get(ctx context.Context, userID, videoID uuid.UUID) (*VideoProgress, error)
	ListUnfinished(ctx context.Context, userID uuid.UUID, limit int) ([]VideoProgress, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed progress repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Upsert(ctx context.Context, p *VideoProgress) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"progress_seconds", "duration_seconds", "completed", "last_watched_at"}),
		}).
		Create(p).Error
	if err != nil {
		return apperrors.NewStorageError("failed to save video progress", err)
	}
	return nil
}

func (r *gormRepository) Get(ctx context.Context, userID, videoID uuid.UUID) (*VideoProgress, error) {
	var p VideoProgress
	err := r.db.WithContext(ctx).Where("user_id = ? AND video_id = ?", userID, videoID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStorageError("failed to load video progress", err)
	}
	return &p, nil
}

func (r *gormRepository) ListUnfinished(ctx context.Context, userID uuid.UUID, limit int) ([]VideoProgress, error) {
	var rows []VideoProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND completed = ? AND progress_seconds > 0", userID, false).
		Order("last_watched_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list video progress", err)
	}
	return rows, nil
}
