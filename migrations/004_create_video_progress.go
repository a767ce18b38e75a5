package migrations

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type videoProgressRow struct {
	UserID          uuid.UUID `gorm:"type:uuid;primaryKey;index:idx_progress_recent,priority:1"`
	VideoID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProgressSeconds float64   `gorm:"not null;default:0"`
	DurationSeconds float64   `gorm:"not null;default:0"`
	Completed       bool      `gorm:"not null;default:false"`
	LastWatchedAt   time.Time `gorm:"not null;index:idx_progress_recent,priority:2"`
}

func (videoProgressRow) TableName() string { return "video_progress" }

type VideoProgressMigration struct {
	db *gorm.DB
}

func NewVideoProgressMigration(db *gorm.DB) *VideoProgressMigration {
	return &VideoProgressMigration{db: db}
}

func (m *VideoProgressMigration) Up() error {
	return m.db.AutoMigrate(&videoProgressRow{})
}

func (m *VideoProgressMigration) Down() error {
	return m.db.Migrator().DropTable(&videoProgressRow{})
}
