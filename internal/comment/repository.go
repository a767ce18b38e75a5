package comment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rehaber/rehaber-backend/internal/content"
	apperrors "github.com/rehaber/rehaber-backend/internal/errors"
	"gorm.io/gorm"
)

// Repository defines the interface for comment data access
type Repository interface {
	Create(ctx context.Context, c *Comment) error
	// GetByID returns ErrNotFound for an unknown id
	GetByID(ctx context.Context, id uuid.UUID) (*Comment, error)
	// ListByContent returns every comment and reply on ref ordered by creation time
	ListByContent(ctx context.Context, ref content.Ref) ([]*Comment, error)
	// Delete removes the comment, and its replies when cascade is set. It returns the removed ids.
	Delete(ctx context.Context, id uuid.UUID, cascade bool) ([]uuid.UUID, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed comment repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, c *Comment) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return apperrors.NewStorageError("failed to create comment", err)
	}
	return nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Comment, error) {
	var c Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStorageError("failed to load comment", err)
	}
	return &c, nil
}

func (r *gormRepository) ListByContent(ctx context.Context, ref content.Ref) ([]*Comment, error) {
	var comments []*Comment
	err := r.db.WithContext(ctx).
		Where("content_id = ? AND content_type = ?", ref.ID, ref.Type).
		Order("created_at").
		Order("id").
		Find(&comments).Error
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list comments", err)
	}
	return comments, nil
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID, cascade bool) ([]uuid.UUID, error) {
	removed := []uuid.UUID{id}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cascade {
			var replies []uuid.UUID
			if err := tx.Model(&Comment{}).Where("parent_id = ?", id).Pluck("id", &replies).Error; err != nil {
				return err
			}
			if len(replies) > 0 {
				if err := tx.Where("id IN ?", replies).Delete(&Comment{}).Error; err != nil {
					return err
				}
				removed = append(removed, replies...)
			}
		}

		result := tx.Where("id = ?", id).Delete(&Comment{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStorageError("failed to delete comment", err)
	}
	return removed, nil
}
