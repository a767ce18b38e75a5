package registration

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/rehaber/rehaber-backend/internal/errors"
)

// Reminder is a bit in Registration.RemindedFlags
type Reminder uint8

const (
	// Reminder24h is set once the day-before reminder went out
	Reminder24h Reminder = 1 << iota
	// Reminder1h is set once the hour-before reminder went out
	Reminder1h
)

// ParseReminder converts a wire value ("24h" or "1h") into a Reminder
func ParseReminder(s string) (Reminder, error) {
	switch s {
	case "24h":
		return Reminder24h, nil
	case "1h":
		return Reminder1h, nil
	default:
		return 0, apperrors.NewValidationError("reminder", fmt.Sprintf("unknown reminder %q", s))
	}
}

func (r Reminder) String() string {
	switch r {
	case Reminder24h:
		return "24h"
	case Reminder1h:
		return "1h"
	default:
		return fmt.Sprintf("reminder(%d)", uint8(r))
	}
}

func (r Reminder) valid() bool {
	return r == Reminder24h || r == Reminder1h
}

// Registration records that a user signed up for an event.
// At most one row exists per (user, event).
type Registration struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:ux_registration_user_event,priority:1"`
	EventID       uuid.UUID `json:"eventId" gorm:"type:uuid;not null;uniqueIndex:ux_registration_user_event,priority:2;index"`
	RegisteredAt  time.Time `json:"registeredAt" gorm:"not null"`
	RemindedFlags Reminder  `json:"remindedFlags" gorm:"not null;default:0"`
}

// TableName specifies the table name for registrations
func (Registration) TableName() string {
	return "registrations"
}

// Reminded reports whether flag is set
func (r *Registration) Reminded(flag Reminder) bool {
	return r.RemindedFlags&flag != 0
}

// Status is the registration state of one event as seen by one user
type Status struct {
	EventID    uuid.UUID `json:"eventId"`
	Registered bool      `json:"registered"`
	Attendees  int64     `json:"attendees"`
}
