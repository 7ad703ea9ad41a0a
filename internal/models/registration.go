package models

import "time"

// RegistrationStatus represents the state of an attendance registration.
type RegistrationStatus string

const (
	// RegistrationStatusConfirmed is the only status the service issues today.
	RegistrationStatusConfirmed RegistrationStatus = "confirmed"
)

// Registration records a user's attendance at an event.
type Registration struct {
	ID               uint               `gorm:"primaryKey" json:"id"`
	UserID           uint               `gorm:"not null;uniqueIndex:idx_registrations_user_event" json:"user_id"`
	EventID          uint               `gorm:"not null;uniqueIndex:idx_registrations_user_event;index" json:"event_id"`
	RegistrationDate time.Time          `gorm:"not null;autoCreateTime" json:"registration_date"`
	Status           RegistrationStatus `gorm:"type:varchar(20);not null;default:'confirmed'" json:"status"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Event *Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"event,omitempty"`
}

// TableName specifies the table name for GORM
func (Registration) TableName() string {
	return "registrations"
}
