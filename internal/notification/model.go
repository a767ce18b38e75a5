package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/rehaber/rehaber-backend/internal/errors"
)

// Type categorizes a notification
type Type string

const (
	// TypeEvent is sent when a user registers for an event
	TypeEvent Type = "event"
	// TypeComment is sent when someone replies to a user's comment
	TypeComment Type = "comment"
	// TypeLike is sent when someone likes a user's comment
	TypeLike Type = "like"
	// TypeSystem covers operator announcements
	TypeSystem Type = "system"
)

// Valid reports whether t is a known notification type
func (t Type) Valid() bool {
	switch t {
	case TypeEvent, TypeComment, TypeLike, TypeSystem:
		return true
	default:
		return false
	}
}

// ParseType converts a wire value into a Type
func ParseType(s string) (Type, error) {
	if t := Type(s); t.Valid() {
		return t, nil
	}
	return "", apperrors.NewValidationError("type", fmt.Sprintf("unknown notification type %q", s))
}

// Notification is a message addressed to one user. Read only ever moves from false to true.
type Notification struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index:idx_notifications_user,priority:1"`
	Title     string     `json:"title" gorm:"type:varchar(255);not null"`
	Message   string     `json:"message" gorm:"type:text;not null"`
	Type      Type       `json:"type" gorm:"type:varchar(16);not null"`
	RelatedID *uuid.UUID `json:"relatedId,omitempty" gorm:"type:uuid"`
	Read      bool       `json:"read" gorm:"not null;default:false"`
	CreatedAt time.Time  `json:"createdAt" gorm:"not null;index:idx_notifications_user,priority:2"`
}

// TableName specifies the table name for notifications
func (Notification) TableName() string {
	return "notifications"
}

// New creates an unread notification. relatedID may be nil.
func New(userID uuid.UUID, t Type, title, message string, relatedID *uuid.UUID) *Notification {
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      t,
		RelatedID: relatedID,
	}
}

// Validate checks a notification before it is stored
func (n *Notification) Validate() error {
	if n.UserID == uuid.Nil {
		return apperrors.NewValidationError("userId", "recipient is required")
	}
	if !n.Type.Valid() {
		return apperrors.NewValidationError("type", fmt.Sprintf("unknown notification type %q", string(n.Type)))
	}
	if n.Title == "" {
		return apperrors.NewValidationError("title", "title is required")
	}
	return nil
}

// UnreadCount is returned by the unread-count endpoint
type UnreadCount struct {
	Count int64 `json:"count"`
}
