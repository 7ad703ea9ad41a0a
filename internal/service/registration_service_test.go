package service

import (
	"context"
	"errors"
	"testing"

	"eventscape/internal/admission"
	"eventscape/internal/models"
	"eventscape/internal/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrationService_RegisterStoresAndPublishesNotification(t *testing.T) {
	regs := noopRegistrationRepo()
	events := noopEventRepo()
	events.getByIDFn = func(_ context.Context, id uint) (*models.Event, error) {
		return &models.Event{ID: id, Title: "Jazz Night"}, nil
	}
	notes := &notificationRepoStub{}
	pub := &publisherStub{}
	svc := NewRegistrationService(regs, events, notes, pub)

	before := testutil.ToFloat64(observability.RegistrationAdmissions.WithLabelValues(observability.AdmissionAdmitted))
	reg, err := svc.Register(context.Background(), 3, 9)
	require.NoError(t, err)
	assert.Equal(t, uint(3), reg.UserID)
	assert.Equal(t, uint(9), reg.EventID)

	after := testutil.ToFloat64(observability.RegistrationAdmissions.WithLabelValues(observability.AdmissionAdmitted))
	assert.Equal(t, before+1, after)

	require.Len(t, notes.created, 1)
	n := notes.created[0]
	assert.Equal(t, uint(3), n.UserID)
	require.NotNil(t, n.EventID)
	assert.Equal(t, uint(9), *n.EventID)
	assert.Equal(t, "Registration confirmed", n.Title)
	assert.Contains(t, n.Message, `"Jazz Night"`)
	require.Len(t, pub.published, 1)
	assert.Same(t, n, pub.published[0])
}

func TestRegistrationService_RegisterConflicts(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		outcome string
		code    string
		message string
	}{
		{"capacity", models.NewConflictError(admission.MsgCapacityReached), observability.AdmissionCapacityReached, models.CodeConflict, admission.MsgCapacityReached},
		{"duplicate", models.NewConflictError(admission.MsgAlreadyRegistered), observability.AdmissionAlreadyRegistered, models.CodeConflict, admission.MsgAlreadyRegistered},
		{"missing event", models.NewNotFoundError("Event"), observability.AdmissionEventNotFound, models.CodeNotFound, "Event not found"},
		{"store failure", models.NewInternalError(errors.New("boom")), observability.AdmissionError, models.CodeInternal, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regs := noopRegistrationRepo()
			regs.createFn = func(context.Context, uint, uint) (*models.Registration, error) { return nil, tt.repoErr }
			notes := &notificationRepoStub{}
			pub := &publisherStub{}
			svc := NewRegistrationService(regs, noopEventRepo(), notes, pub)

			counter := observability.RegistrationAdmissions.WithLabelValues(tt.outcome)
			before := testutil.ToFloat64(counter)
			_, err := svc.Register(context.Background(), 1, 2)
			assertAppError(t, err, tt.code, tt.message)
			assert.Equal(t, before+1, testutil.ToFloat64(counter))
			assert.Empty(t, notes.created)
			assert.Empty(t, pub.published)
		})
	}
}

func TestRegistrationService_NotificationFailuresDoNotFailRegistration(t *testing.T) {
	t.Run("publish error", func(t *testing.T) {
		pub := &publisherStub{err: errors.New("redis down")}
		svc := NewRegistrationService(noopRegistrationRepo(), noopEventRepo(), &notificationRepoStub{}, pub)
		_, err := svc.Register(context.Background(), 1, 2)
		assert.NoError(t, err)
		assert.Len(t, pub.published, 1)
	})

	t.Run("store error skips publish", func(t *testing.T) {
		pub := &publisherStub{}
		notes := &notificationRepoStub{err: errors.New("insert failed")}
		svc := NewRegistrationService(noopRegistrationRepo(), noopEventRepo(), notes, pub)
		_, err := svc.Register(context.Background(), 1, 2)
		assert.NoError(t, err)
		assert.Empty(t, pub.published)
	})

	t.Run("no publisher", func(t *testing.T) {
		notes := &notificationRepoStub{}
		svc := NewRegistrationService(noopRegistrationRepo(), noopEventRepo(), notes, nil)
		_, err := svc.Register(context.Background(), 1, 2)
		assert.NoError(t, err)
		assert.Len(t, notes.created, 1)
	})
}

func TestRegistrationService_Cancel(t *testing.T) {
	regs := noopRegistrationRepo()
	regs.deleteFn = func(_ context.Context, userID, _ uint) error {
		if userID == 1 {
			return nil
		}
		return models.NewNotFoundError("Registration")
	}
	notes := &notificationRepoStub{}
	svc := NewRegistrationService(regs, noopEventRepo(), notes, nil)

	require.NoError(t, svc.Cancel(context.Background(), 1, 2))
	require.Len(t, notes.created, 1)
	assert.Equal(t, "Registration cancelled", notes.created[0].Title)

	err := svc.Cancel(context.Background(), 2, 2)
	assertAppError(t, err, models.CodeNotFound, "Registration not found")
	assert.Len(t, notes.created, 1)
}
