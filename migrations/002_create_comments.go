package migrations

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type commentRow struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ContentID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_comments_content,priority:1"`
	ContentType string     `gorm:"type:varchar(16);not null;index:idx_comments_content,priority:2"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index"`
	Body        string     `gorm:"type:text;not null"`
	CreatedAt   time.Time  `gorm:"not null;index:idx_comments_content,priority:3"`
}

func (commentRow) TableName() string { return "comments" }

type CommentMigration struct {
	db *gorm.DB
}

func NewCommentMigration(db *gorm.DB) *CommentMigration {
	return &CommentMigration{db: db}
}

func (m *CommentMigration) Up() error {
	return m.db.AutoMigrate(&commentRow{})
}

func (m *CommentMigration) Down() error {
	return m.db.Migrator().DropTable(&commentRow{})
}
