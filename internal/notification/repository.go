package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
	apperrors "github.com/rehaber/rehaber-backend/internal/errors"
	"gorm.io/gorm"
)

// Repository defines the storage operations for notifications. The SQL
// implementation lives here; the ScyllaDB one in database/scylladb.
type Repository interface {
	SaveNotification(ctx context.Context, n *Notification) error
	// GetNotification returns ErrNotFound for an unknown id
	GetNotification(ctx context.Context, id uuid.UUID) (*Notification, error)
	GetNotificationsByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	// MarkAsRead reports whether the notification changed from unread to read
	MarkAsRead(ctx context.Context, n *Notification) (bool, error)
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed notification repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) SaveNotification(ctx context.Context, n *Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return apperrors.NewStorageError("failed to save notification", err)
	}
	return nil
}

func (r *gormRepository) GetNotification(ctx context.Context, id uuid.UUID) (*Notification, error) {
	var n Notification
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStorageError("failed to load notification", err)
	}
	return &n, nil
}

func (r *gormRepository) GetNotificationsByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	var notifications []*Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list notifications", err)
	}
	return notifications, nil
}

func (r *gormRepository) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.NewStorageError("failed to count unread notifications", err)
	}
	return count, nil
}

func (r *gormRepository) MarkAsRead(ctx context.Context, n *Notification) (bool, error) {
	result := r.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND read = ?", n.ID, false).
		Update("read", true)
	if result.Error != nil {
		return false, apperrors.NewStorageError("failed to mark notification read", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *gormRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if result.Error != nil {
		return 0, apperrors.NewStorageError("failed to mark notifications read", result.Error)
	}
	return result.RowsAffected, nil
}
