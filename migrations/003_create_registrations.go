package migrations

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type registrationRow struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_registration_user_event,priority:1"`
	EventID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_registration_user_event,priority:2;index"`
	RegisteredAt  time.Time `gorm:"not null"`
	RemindedFlags uint8     `gorm:"not null;default:0"`
}

func (registrationRow) TableName() string { return "registrations" }

type RegistrationMigration struct {
	db *gorm.DB
}

func NewRegistrationMigration(db *gorm.DB) *RegistrationMigration {
	return &RegistrationMigration{db: db}
}

func (m *RegistrationMigration) Up() error {
	return m.db.AutoMigrate(&registrationRow{})
}

func (m *RegistrationMigration) Down() error {
	return m.db.Migrator().DropTable(&registrationRow{})
}
