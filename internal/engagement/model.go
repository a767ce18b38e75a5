package engagement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rehaber/rehaber-backend/internal/content"
	apperrors "github.com/rehaber/rehaber-backend/internal/errors"
)

// Kind is the flavor of engagement a user can toggle on content
type Kind string

const (
	KindLike     Kind = "like"
	KindFavorite Kind = "favorite"
)

// ParseKind converts a wire value into a Kind
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindLike, KindFavorite:
		return k, nil
	default:
		return "", apperrors.NewValidationError("kind", fmt.Sprintf("unknown engagement kind %q", s))
	}
}

// SupportedBy reports whether content of type t accepts this kind
func (k Kind) SupportedBy(t content.Type) bool {
	caps := t.Capabilities()
	switch k {
	case KindLike:
		return caps.Likeable
	case KindFavorite:
		return caps.Favoritable
	default:
		return false
	}
}

// Engagement is one user's like or favorite on one piece of content.
// At most one row exists per (user, content, kind).
type Engagement struct {
	ID          uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID    `json:"userId" gorm:"type:uuid;not null;uniqueIndex:ux_engagement_key,priority:1"`
	ContentID   uuid.UUID    `json:"contentId" gorm:"type:uuid;not null;uniqueIndex:ux_engagement_key,priority:2;index:idx_engagement_content,priority:1"`
	ContentType content.Type `json:"contentType" gorm:"type:varchar(16);not null;uniqueIndex:ux_engagement_key,priority:3;index:idx_engagement_content,priority:2"`
	Kind        Kind         `json:"kind" gorm:"type:varchar(16);not null;uniqueIndex:ux_engagement_key,priority:4;index:idx_engagement_content,priority:3"`
	CreatedAt   time.Time    `json:"createdAt" gorm:"not null"`
}

// TableName specifies the table name for engagements
func (Engagement) TableName() string {
	return "engagements"
}

// Ref returns the content the engagement points at
func (e Engagement) Ref() content.Ref {
	return content.NewRef(e.ContentID, e.ContentType)
}

// Key identifies the single engagement row a toggle acts on
type Key struct {
	UserID uuid.UUID
	Ref    content.Ref
	Kind   Kind
}

// Summary is the engagement state of one item as seen by one viewer
type Summary struct {
	ContentID     uuid.UUID    `json:"contentId"`
	ContentType   content.Type `json:"contentType"`
	LikeCount     int64        `json:"likeCount"`
	FavoriteCount int64        `json:"favoriteCount"`
	Liked         bool         `json:"liked"`
	Favorited     bool         `json:"favorited"`
	// Pending is set when Liked or Favorited shows a toggle the store has not answered yet
	Pending bool `json:"pending,omitempty"`
}
