package repository

import (
	"context"
	"time"

	"eventscape/internal/admission"
	"eventscape/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RegistrationRepository defines persistence operations for event registrations.
type RegistrationRepository interface {
	// Create admits userID to eventID, enforcing capacity and uniqueness.
	Create(ctx context.Context, userID, eventID uint) (*models.Registration, error)
	Delete(ctx context.Context, userID, eventID uint) error
	Exists(ctx context.Context, userID, eventID uint) (bool, error)
	CountConfirmed(ctx context.Context, eventID uint) (int64, error)
}

type registrationRepository struct {
	db *gorm.DB
}

// NewRegistrationRepository returns a new RegistrationRepository implementation.
func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

// Create runs the admission check and the insert in one transaction. On
// PostgreSQL the event row is locked FOR UPDATE so concurrent admissions to
// the same event serialize; the (user_id, event_id) unique index catches any
// duplicate that slips through.
func (r *registrationRepository) Create(ctx context.Context, userID, eventID uint) (*models.Registration, error) {
	var registration *models.Registration

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		q := tx.Select("id", "capacity")
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&event, eventID).Error; err != nil {
			return notFoundOr(err, "Event")
		}

		var confirmed int64
		if event.HasCapacity() {
			if err := tx.Model(&models.Registration{}).
				Where("event_id = ? AND status = ?", eventID, models.RegistrationStatusConfirmed).
				Count(&confirmed).Error; err != nil {
				return err
			}
		}

		var existing int64
		if err := tx.Model(&models.Registration{}).
			Where("user_id = ? AND event_id = ?", userID, eventID).
			Count(&existing).Error; err != nil {
			return err
		}

		if err := admission.Decide(event.Capacity, confirmed, existing > 0); err != nil {
			return err
		}

		registration = &models.Registration{
			UserID:           userID,
			EventID:          eventID,
			RegistrationDate: time.Now().UTC(),
			Status:           models.RegistrationStatusConfirmed,
		}
		if err := tx.Omit(clause.Associations).Create(registration).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.NewConflictError(admission.MsgAlreadyRegistered)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return registration, nil
}

func (r *registrationRepository) Delete(ctx context.Context, userID, eventID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Delete(&models.Registration{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Registration")
	}
	return nil
}

func (r *registrationRepository) Exists(ctx context.Context, userID, eventID uint) (bool, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Registration{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *registrationRepository) CountConfirmed(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Registration{}).
		Where("event_id = ? AND status = ?", eventID, models.RegistrationStatusConfirmed).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
