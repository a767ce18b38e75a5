package migrations

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type engagementRow struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_engagement_key,priority:1"`
	ContentID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_engagement_key,priority:2;index:idx_engagement_content,priority:1"`
	ContentType string    `gorm:"type:varchar(16);not null;uniqueIndex:ux_engagement_key,priority:3;index:idx_engagement_content,priority:2"`
	Kind        string    `gorm:"type:varchar(16);not null;uniqueIndex:ux_engagement_key,priority:4;index:idx_engagement_content,priority:3"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (engagementRow) TableName() string { return "engagements" }

// EngagementMigration creates the likes and favorites table
type EngagementMigration struct {
	db *gorm.DB
}

func NewEngagementMigration(db *gorm.DB) *EngagementMigration {
	return &EngagementMigration{db: db}
}

func (m *EngagementMigration) Up() error {
	return m.db.AutoMigrate(&engagementRow{})
}

func (m *EngagementMigration) Down() error {
	return m.db.Migrator().DropTable(&engagementRow{})
}
