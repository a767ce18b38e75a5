package comment

import (
	"time"

	"github.com/google/uuid"
	"github.com/rehaber/rehaber-backend/internal/content"
)

// Comment is a top-level comment on a content item or a reply to one.
// Threads are at most two levels deep.
type Comment struct {
	ID          uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	ContentID   uuid.UUID    `json:"contentId" gorm:"type:uuid;not null;index:idx_comments_content,priority:1"`
	ContentType content.Type `json:"contentType" gorm:"type:varchar(16);not null;index:idx_comments_content,priority:2"`
	UserID      uuid.UUID    `json:"userId" gorm:"type:uuid;not null"`
	ParentID    *uuid.UUID   `json:"parentId,omitempty" gorm:"type:uuid;index"`
	Body        string       `json:"body" gorm:"type:text;not null"`
	CreatedAt   time.Time    `json:"createdAt" gorm:"not null;index:idx_comments_content,priority:3"`

	// Derived per request, never stored
	LikeCount int64      `json:"likeCount" gorm:"-"`
	Liked     bool       `json:"liked" gorm:"-"`
	Orphaned  bool       `json:"orphaned,omitempty" gorm:"-"`
	Replies   []*Comment `json:"replies,omitempty" gorm:"-"`
}

// TableName specifies the table name for comments
func (Comment) TableName() string {
	return "comments"
}

// Ref returns the content the comment belongs to
func (c *Comment) Ref() content.Ref {
	return content.NewRef(c.ContentID, c.ContentType)
}

// LikeRef is the reference used to like this comment
func (c *Comment) LikeRef() content.Ref {
	return content.NewRef(c.ID, content.TypeComment)
}

// IsReply reports whether the comment has a parent
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// Config holds comment thread settings
type Config struct {
	// CascadeDelete removes replies together with their top-level comment
	CascadeDelete bool
	// HideOrphans leaves replies of deleted comments out of listings instead of
	// promoting them. Ignored when CascadeDelete is set.
	HideOrphans bool
	// MaxBodyLength is measured in runes; zero disables the check
	MaxBodyLength int
	NotifyOnReply bool
	NotifyOnLike  bool
}

// CreateRequest is the body of the add-comment endpoint
type CreateRequest struct {
	Body     string     `json:"body"`
	ParentID *uuid.UUID `json:"parentId,omitempty"`
}
