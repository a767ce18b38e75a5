package engagement

import (
	"context"

	"github.com/google/uuid"
	"github.com/rehaber/rehaber-backend/internal/content"
	apperrors "github.com/rehaber/rehaber-backend/internal/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the gateway to the engagements table
type Repository interface {
	Exists(ctx context.Context, key Key) (bool, error)
	// Insert writes e unless a row with the same key exists; it reports whether a row was written
	Insert(ctx context.Context, e *Engagement) (bool, error)
	// Delete removes the row for key; it reports whether a row was removed
	Delete(ctx context.Context, key Key) (bool, error)
	Count(ctx context.Context, ref content.Ref, kind Kind) (int64, error)
	CountMany(ctx context.Context, t content.Type, kind Kind, ids []uuid.UUID) (map[uuid.UUID]int64, error)
	EngagedIDs(ctx context.Context, userID uuid.UUID, t content.Type, kind Kind, ids []uuid.UUID) (map[uuid.UUID]bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, kind Kind, t content.Type) ([]Engagement, error)
	DeleteByContent(ctx context.Context, refs ...content.Ref) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed engagement repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) keyScope(key Key) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ? AND content_id = ? AND content_type = ? AND kind = ?",
			key.UserID, key.Ref.ID, key.Ref.Type, key.Kind)
	}
}

func (r *gormRepository) Exists(ctx context.Context, key Key) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Engagement{}).Scopes(r.keyScope(key)).Count(&count).Error
	if err != nil {
		return false, apperrors.NewStorageError("failed to read engagement", err)
	}
	return count > 0, nil
}

func (r *gormRepository) Insert(ctx context.Context, e *Engagement) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(e)
	if result.Error != nil {
		return false, apperrors.NewStorageError("failed to insert engagement", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *gormRepository) Delete(ctx context.Context, key Key) (bool, error) {
	result := r.db.WithContext(ctx).Scopes(r.keyScope(key)).Delete(&Engagement{})
	if result.Error != nil {
		return false, apperrors.NewStorageError("failed to delete engagement", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *gormRepository) Count(ctx context.Context, ref content.Ref, kind Kind) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Engagement{}).
		Where("content_id = ? AND content_type = ? AND kind = ?", ref.ID, ref.Type, kind).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.NewStorageError("failed to count engagements", err)
	}
	return count, nil
}

func (r *gormRepository) CountMany(ctx context.Context, t content.Type, kind Kind, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []struct {
		ContentID uuid.UUID
		Total     int64
	}
	err := r.db.WithContext(ctx).Model(&Engagement{}).
		Select("content_id, COUNT(*) AS total").
		Where("content_type = ? AND kind = ? AND content_id IN ?", t, kind, ids).
		Group("content_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewStorageError("failed to count engagements", err)
	}

	for _, row := range rows {
		counts[row.ContentID] = row.Total
	}
	return counts, nil
}

func (r *gormRepository) EngagedIDs(ctx context.Context, userID uuid.UUID, t content.Type, kind Kind, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	engaged := make(map[uuid.UUID]bool, len(ids))
	if len(ids) == 0 || userID == uuid.Nil {
		return engaged, nil
	}

	var found []uuid.UUID
	err := r.db.WithContext(ctx).Model(&Engagement{}).
		Where("user_id = ? AND content_type = ? AND kind = ? AND content_id IN ?", userID, t, kind, ids).
		Pluck("content_id", &found).Error
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read engagements", err)
	}

	for _, id := range found {
		engaged[id] = true
	}
	return engaged, nil
}

func (r *gormRepository) ListByUser(ctx context.Context, userID uuid.UUID, kind Kind, t content.Type) ([]Engagement, error) {
	query := r.db.WithContext(ctx).Where("user_id = ? AND kind = ?", userID, kind)
	if t != "" {
		query = query.Where("content_type = ?", t)
	}

	var engagements []Engagement
	if err := query.Order("created_at DESC").Order("id").Find(&engagements).Error; err != nil {
		return nil, apperrors.NewStorageError("failed to list engagements", err)
	}
	return engagements, nil
}

func (r *gormRepository) DeleteByContent(ctx context.Context, refs ...content.Ref) (int64, error) {
	if len(refs) == 0 {
		return 0, nil
	}

	byType := make(map[content.Type][]uuid.UUID)
	for _, ref := range refs {
		byType[ref.Type] = append(byType[ref.Type], ref.ID)
	}

	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for t, ids := range byType {
			result := tx.Where("content_type = ? AND content_id IN ?", t, ids).Delete(&Engagement{})
			if result.Error != nil {
				return result.Error
			}
			removed += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, apperrors.NewStorageError("failed to purge engagements", err)
	}
	return removed, nil
}
