package service

import (
	"context"
	"errors"
	"fmt"

	"eventscape/internal/admission"
	"eventscape/internal/middleware"
	"eventscape/internal/models"
	"eventscape/internal/observability"
	"eventscape/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// Publisher pushes a stored notification to its owner.
type Publisher interface {
	Publish(ctx context.Context, n *models.Notification) error
}

type RegistrationService struct {
	registrationRepo repository.RegistrationRepository
	eventRepo        repository.EventRepository
	notificationRepo repository.NotificationRepository
	publisher        Publisher
}

// NewRegistrationService wires the admission path. publisher may be nil when
// Redis is not configured; notifications are still stored.
func NewRegistrationService(
	registrationRepo repository.RegistrationRepository,
	eventRepo repository.EventRepository,
	notificationRepo repository.NotificationRepository,
	publisher Publisher,
) *RegistrationService {
	return &RegistrationService{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

// Register admits userID to eventID. Capacity and duplicate checks run in
// the repository transaction; both are reported as conflicts.
func (s *RegistrationService) Register(ctx context.Context, userID, eventID uint) (*models.Registration, error) {
	span, ctx := observability.StartSpan(ctx, "registrations.admit",
		attribute.Int64("event.id", int64(eventID)),
		attribute.Int64("user.id", int64(userID)),
	)
	defer span.End()

	registration, err := s.registrationRepo.Create(ctx, userID, eventID)
	outcome := admissionOutcome(err)
	observability.RecordAdmission(outcome)
	span.AddAttributes(attribute.String("admission.outcome", outcome))
	if err != nil {
		if outcome == observability.AdmissionError {
			span.SetError(err)
		}
		return nil, err
	}

	s.notify(ctx, userID, eventID, "Registration confirmed", "You are registered for %s.")
	return registration, nil
}

// Cancel removes the user's registration for the event.
func (s *RegistrationService) Cancel(ctx context.Context, userID, eventID uint) error {
	if err := s.registrationRepo.Delete(ctx, userID, eventID); err != nil {
		return err
	}
	s.notify(ctx, userID, eventID, "Registration cancelled", "Your registration for %s was cancelled.")
	return nil
}

// notify stores and publishes a notification about eventID. Failures are
// logged and never fail the registration itself.
func (s *RegistrationService) notify(ctx context.Context, userID, eventID uint, title, format string) {
	if s.notificationRepo == nil {
		return
	}

	subject := "the event"
	if event, err := s.eventRepo.GetByID(ctx, eventID); err == nil {
		subject = fmt.Sprintf("%q", event.Title)
	}

	n := &models.Notification{
		UserID:  userID,
		EventID: &eventID,
		Title:   title,
		Message: fmt.Sprintf(format, subject),
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to store notification",
			"event_id", eventID, "error", err)
		return
	}
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, n); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish notification",
			"notification_id", n.ID, "error", err)
	}
}

func admissionOutcome(err error) string {
	if err == nil {
		return observability.AdmissionAdmitted
	}
	switch {
	case errors.Is(err, models.ErrNotFound):
		return observability.AdmissionEventNotFound
	case errors.Is(err, models.ErrConflict):
		if models.AsAppError(err).Message == admission.MsgCapacityReached {
			return observability.AdmissionCapacityReached
		}
		return observability.AdmissionAlreadyRegistered
	default:
		return observability.AdmissionError
	}
}
