package scylladb

import (
	"context"
	"errors"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	apperrors "github.com/rehaber/rehaber-backend/internal/errors"
	"github.com/rehaber/rehaber-backend/internal/notification"
)

// NotificationRepository stores notifications in ScyllaDB. Every write goes to
// both the id table and the per-user inbox table in one logged batch.
type NotificationRepository struct {
	session *gocql.Session
}

// NewNotificationRepository creates a new ScyllaDB notification repository
func NewNotificationRepository(session *gocql.Session) notification.Repository {
	return &NotificationRepository{session: session}
}

const notificationColumns = "id, user_id, title, message, type, related_id, read, created_at"

func (r *NotificationRepository) SaveNotification(ctx context.Context, n *notification.Notification) error {
	// ScyllaDB timestamps have millisecond precision
	n.CreatedAt = n.CreatedAt.Truncate(time.Millisecond)

	var related interface{}
	if n.RelatedID != nil {
		related = gocql.UUID(*n.RelatedID)
	}
	args := []interface{}{
		gocql.UUID(n.ID), gocql.UUID(n.UserID), n.Title, n.Message, string(n.Type), related, n.Read, n.CreatedAt,
	}

	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`INSERT INTO notifications (`+notificationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	batch.Query(`INSERT INTO notifications_by_user (`+notificationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err := r.session.ExecuteBatch(batch); err != nil {
		return apperrors.NewStorageError("failed to save notification", err)
	}
	return nil
}

func (r *NotificationRepository) GetNotification(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	query := r.session.Query(
		`SELECT `+notificationColumns+` FROM notifications WHERE id = ?`,
		gocql.UUID(id),
	).WithContext(ctx)

	n, err := scanNotification(query.Scan)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStorageError("failed to load notification", err)
	}
	return n, nil
}

// GetNotificationsByUserID pages through the inbox partition. CQL has no
// OFFSET, so the first offset rows are read and skipped.
func (r *NotificationRepository) GetNotificationsByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*notification.Notification, error) {
	iter := r.session.Query(
		`SELECT `+notificationColumns+` FROM notifications_by_user WHERE user_id = ? LIMIT ?`,
		gocql.UUID(userID), limit+offset,
	).WithContext(ctx).Iter()

	notifications := make([]*notification.Notification, 0, limit)
	for i := 0; ; i++ {
		n, err := scanNotification(func(dest ...interface{}) error {
			if !iter.Scan(dest...) {
				return gocql.ErrNotFound
			}
			return nil
		})
		if err != nil {
			break
		}
		if i >= offset {
			notifications = append(notifications, n)
		}
	}
	if err := iter.Close(); err != nil {
		return nil, apperrors.NewStorageError("failed to list notifications", err)
	}
	return notifications, nil
}

func (r *NotificationRepository) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	iter := r.session.Query(
		`SELECT read FROM notifications_by_user WHERE user_id = ?`,
		gocql.UUID(userID),
	).WithContext(ctx).Iter()

	var (
		count int64
		read  bool
	)
	for iter.Scan(&read) {
		if !read {
			count++
		}
	}
	if err := iter.Close(); err != nil {
		return 0, apperrors.NewStorageError("failed to count unread notifications", err)
	}
	return count, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, n *notification.Notification) (bool, error) {
	if n.Read {
		return false, nil
	}
	if err := r.markRead(ctx, n.UserID, n.ID, n.CreatedAt); err != nil {
		return false, err
	}
	n.Read = true
	return true, nil
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	iter := r.session.Query(
		`SELECT id, created_at, read FROM notifications_by_user WHERE user_id = ?`,
		gocql.UUID(userID),
	).WithContext(ctx).Iter()

	type unreadRow struct {
		id        uuid.UUID
		createdAt time.Time
	}
	var (
		unread    []unreadRow
		id        gocql.UUID
		createdAt time.Time
		read      bool
	)
	for iter.Scan(&id, &createdAt, &read) {
		if !read {
			unread = append(unread, unreadRow{id: uuid.UUID(id), createdAt: createdAt})
		}
	}
	if err := iter.Close(); err != nil {
		return 0, apperrors.NewStorageError("failed to list unread notifications", err)
	}

	var updated int64
	for _, row := range unread {
		if err := r.markRead(ctx, userID, row.id, row.createdAt); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func (r *NotificationRepository) markRead(ctx context.Context, userID, id uuid.UUID, createdAt time.Time) error {
	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`UPDATE notifications SET read = true WHERE id = ?`, gocql.UUID(id))
	batch.Query(
		`UPDATE notifications_by_user SET read = true WHERE user_id = ? AND created_at = ? AND id = ?`,
		gocql.UUID(userID), createdAt, gocql.UUID(id),
	)
	if err := r.session.ExecuteBatch(batch); err != nil {
		return apperrors.NewStorageError("failed to mark notification as read", err)
	}
	return nil
}

func scanNotification(scan func(dest ...interface{}) error) (*notification.Notification, error) {
	var (
		id, userID gocql.UUID
		related    *gocql.UUID
		typ        string
		n          notification.Notification
	)
	if err := scan(&id, &userID, &n.Title, &n.Message, &typ, &related, &n.Read, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.ID = uuid.UUID(id)
	n.UserID = uuid.UUID(userID)
	n.Type = notification.Type(typ)
	if related != nil {
		relatedID := uuid.UUID(*related)
		n.RelatedID = &relatedID
	}
	n.CreatedAt = n.CreatedAt.UTC()
	return &n, nil
}
