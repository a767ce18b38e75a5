package migrations

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type notificationRow struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_notifications_user,priority:1"`
	Title     string     `gorm:"type:varchar(255);not null"`
	Message   string     `gorm:"type:text;not null"`
	Type      string     `gorm:"type:varchar(16);not null"`
	RelatedID *uuid.UUID `gorm:"type:uuid"`
	Read      bool       `gorm:"not null;default:false"`
	CreatedAt time.Time  `gorm:"not null;index:idx_notifications_user,priority:2"`
}

func (notificationRow) TableName() string { return "notifications" }

type NotificationMigration struct {
	db *gorm.DB
}

func NewNotificationMigration(db *gorm.DB) *NotificationMigration {
	return &NotificationMigration{db: db}
}

func (m *NotificationMigration) Up() error {
	return m.db.AutoMigrate(&notificationRow{})
}

func (m *NotificationMigration) Down() error {
	return m.db.Migrator().DropTable(&notificationRow{})
}
