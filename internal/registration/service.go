package registration

import (
	"context"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/rehaber/rehaber-backend/internal/errors"
	"github.com/rehaber/rehaber-backend/internal/logger"
	"github.com/rehaber/rehaber-backend/internal/notification"
)

const (
	maxToggleAttempts = 16

	confirmationTitle   = "Registration confirmed"
	confirmationMessage = "You're registered. We'll remind you before the event starts."
	reminderTitle       = "Event reminder"
)

var reminderMessages = map[Reminder]string{
	Reminder24h: "Your event starts in 24 hours.",
	Reminder1h:  "Your event starts in 1 hour.",
}

// Service manages event sign-ups
type Service interface {
	// Toggle registers or unregisters the user and returns the new state
	Toggle(ctx context.Context, userID, eventID uuid.UUID) (bool, error)
	IsRegistered(ctx context.Context, userID, eventID uuid.UUID) (bool, error)
	Status(ctx context.Context, userID, eventID uuid.UUID) (*Status, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]Registration, error)
	// Remind sets the reminder flag and notifies the registrant. It reports whether
	// the flag was newly set; a reminder already sent is not sent again.
	Remind(ctx context.Context, registrationID uuid.UUID, flag Reminder) (bool, error)
	// RemindEvent reminds every registrant of the event and returns how many were notified
	RemindEvent(ctx context.Context, eventID uuid.UUID, flag Reminder) (int, error)
}

// Notifier receives the confirmation sent after a successful registration
type Notifier interface {
	Append(ctx context.Context, n *notification.Notification) error
}

type serviceImpl struct {
	repo     Repository
	notifier Notifier
	logger   logger.Logger
	now      func() time.Time
}

// Option configures the registration service
type Option func(*serviceImpl)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *serviceImpl) {
		s.now = now
	}
}

// NewService creates a new registration service
func NewService(repo Repository, notifier Notifier, log logger.Logger, opts ...Option) Service {
	s := &serviceImpl{
		repo:     repo,
		notifier: notifier,
		logger:   log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Toggle follows the same delete-first loop as engagement toggles. Registering is
// the primary effect; the confirmation notification is appended afterwards and a
// failure to append it is only logged.
func (s *serviceImpl) Toggle(ctx context.Context, userID, eventID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, apperrors.ErrUnauthenticated
	}
	if eventID == uuid.Nil {
		return false, apperrors.NewValidationError("eventId", "event id is required")
	}

	for attempt := 1; attempt <= maxToggleAttempts; attempt++ {
		removed, err := s.repo.Delete(ctx, userID, eventID)
		if err != nil {
			return false, err
		}
		if removed {
			s.logger.LogInfo("Registration cancelled", map[string]interface{}{
				"userId":  userID.String(),
				"eventId": eventID.String(),
			})
			return false, nil
		}

		inserted, err := s.repo.Insert(ctx, &Registration{
			ID:           uuid.New(),
			UserID:       userID,
			EventID:      eventID,
			RegisteredAt: s.now().UTC(),
		})
		if err != nil {
			return false, err
		}
		if inserted {
			s.logger.LogInfo("Registration created", map[string]interface{}{
				"userId":  userID.String(),
				"eventId": eventID.String(),
			})
			s.confirm(ctx, userID, eventID)
			return true, nil
		}
	}

	return false, apperrors.NewStorageError("registration toggle contended too long", nil)
}

func (s *serviceImpl) confirm(ctx context.Context, userID, eventID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	related := eventID
	n := notification.New(userID, notification.TypeEvent, confirmationTitle, confirmationMessage, &related)
	if err := s.notifier.Append(ctx, n); err != nil {
		s.logger.LogWarn("Failed to append registration notification", map[string]interface{}{
			"userId":  userID.String(),
			"eventId": eventID.String(),
			"error":   err.Error(),
		})
	}
}

func (s *serviceImpl) IsRegistered(ctx context.Context, userID, eventID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	return s.repo.Exists(ctx, userID, eventID)
}

func (s *serviceImpl) Status(ctx context.Context, userID, eventID uuid.UUID) (*Status, error) {
	if eventID == uuid.Nil {
		return nil, apperrors.NewValidationError("eventId", "event id is required")
	}

	registered, err := s.IsRegistered(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	attendees, err := s.repo.CountByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &Status{EventID: eventID, Registered: registered, Attendees: attendees}, nil
}

// ListMine returns the user's registrations, newest first
func (s *serviceImpl) ListMine(ctx context.Context, userID uuid.UUID) ([]Registration, error) {
	if userID == uuid.Nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *serviceImpl) Remind(ctx context.Context, registrationID uuid.UUID, flag Reminder) (bool, error) {
	if !flag.valid() {
		return false, apperrors.NewValidationError("reminder", "unknown reminder flag")
	}
	reg, err := s.repo.GetByID(ctx, registrationID)
	if err != nil {
		return false, err
	}
	return s.remind(ctx, reg, flag)
}

// remind flips the flag first so concurrent schedulers notify at most once
func (s *serviceImpl) remind(ctx context.Context, reg *Registration, flag Reminder) (bool, error) {
	changed, err := s.repo.SetReminded(ctx, reg.ID, flag)
	if err != nil || !changed {
		return false, err
	}
	if s.notifier == nil {
		return true, nil
	}

	related := reg.EventID
	n := notification.New(reg.UserID, notification.TypeEvent, reminderTitle, reminderMessages[flag], &related)
	if err := s.notifier.Append(ctx, n); err != nil {
		s.logger.LogWarn("Failed to append event reminder", map[string]interface{}{
			"registrationId": reg.ID.String(),
			"reminder":       flag.String(),
			"error":          err.Error(),
		})
	}
	return true, nil
}

func (s *serviceImpl) RemindEvent(ctx context.Context, eventID uuid.UUID, flag Reminder) (int, error) {
	if eventID == uuid.Nil {
		return 0, apperrors.NewValidationError("eventId", "event id is required")
	}
	if !flag.valid() {
		return 0, apperrors.NewValidationError("reminder", "unknown reminder flag")
	}

	registrations, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range registrations {
		changed, err := s.remind(ctx, &registrations[i], flag)
		if err != nil {
			return sent, err
		}
		if changed {
			sent++
		}
	}

	s.logger.LogInfo("Event reminders sent", map[string]interface{}{
		"eventId":  eventID.String(),
		"reminder": flag.String(),
		"sent":     sent,
	})
	return sent, nil
}
