package registration

import (
	"context"
	"errors"

	"github.com/google/uuid"
	apperrors "github.com/rehaber/rehaber-backend/internal/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the gateway to the registrations table
type Repository interface {
	Exists(ctx context.Context, userID, eventID uuid.UUID) (bool, error)
	// Insert writes r unless the user is already registered; it reports whether a row was written
	Insert(ctx context.Context, r *Registration) (bool, error)
	// Delete reports whether a row was removed
	Delete(ctx context.Context, userID, eventID uuid.UUID) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Registration, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Registration, error)
	CountByEvent(ctx context.Context, eventID uuid.UUID) (int64, error)
	// ListByEvent returns the event's registrations, oldest first
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]Registration, error)
	// SetReminded ors flag into the row's reminded flags and reports whether it changed
	SetReminded(ctx context.Context, id uuid.UUID, flag Reminder) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed registration repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Exists(ctx context.Context, userID, eventID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Registration{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.NewStorageError("failed to read registration", err)
	}
	return count > 0, nil
}

func (r *gormRepository) Insert(ctx context.Context, reg *Registration) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(reg)
	if result.Error != nil {
		return false, apperrors.NewStorageError("failed to insert registration", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *gormRepository) Delete(ctx context.Context, userID, eventID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Delete(&Registration{})
	if result.Error != nil {
		return false, apperrors.NewStorageError("failed to delete registration", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Registration, error) {
	var reg Registration
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&reg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStorageError("failed to load registration", err)
	}
	return &reg, nil
}

func (r *gormRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Registration, error) {
	var registrations []Registration
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("registered_at DESC").
		Order("id").
		Find(&registrations).Error
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list registrations", err)
	}
	return registrations, nil
}

func (r *gormRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]Registration, error) {
	var registrations []Registration
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("registered_at").
		Order("id").
		Find(&registrations).Error
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list event registrations", err)
	}
	return registrations, nil
}

func (r *gormRepository) CountByEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Registration{}).Where("event_id = ?", eventID).Count(&count).Error; err != nil {
		return 0, apperrors.NewStorageError("failed to count registrations", err)
	}
	return count, nil
}

func (r *gormRepository) SetReminded(ctx context.Context, id uuid.UUID, flag Reminder) (bool, error) {
	result := r.db.WithContext(ctx).Model(&Registration{}).
		Where("id = ? AND (reminded_flags & ?) = 0", id, uint8(flag)).
		Update("reminded_flags", gorm.Expr("reminded_flags | ?", uint8(flag)))
	if result.Error != nil {
		return false, apperrors.NewStorageError("failed to update reminder flags", result.Error)
	}
	return result.RowsAffected > 0, nil
}
