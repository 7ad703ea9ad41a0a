package models

import "time"

// Event is a scheduled happening at a geographic location.
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Location    string    `gorm:"size:255;not null" json:"location"`
	Latitude    float64   `gorm:"type:decimal(10,8);not null;index:idx_events_lat_lng" json:"latitude"`
	Longitude   float64   `gorm:"type:decimal(11,8);not null;index:idx_events_lat_lng" json:"longitude"`
	StartDate   time.Time `gorm:"not null;index" json:"start_date"`
	EndDate     time.Time `gorm:"not null" json:"end_date"`
	ImageURL    string    `gorm:"type:text" json:"image_url"`
	CategoryID  uint      `gorm:"not null;index" json:"category_id"`
	OrganizerID uint      `gorm:"not null;index" json:"organizer_id"`
	// Capacity is nil for events without an attendance limit.
	Capacity  *int      `json:"capacity"`
	Price     *float64  `gorm:"type:decimal(10,2)" json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Category  *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category,omitempty"`
	Organizer *User     `gorm:"foreignKey:OrganizerID;constraint:OnDelete:CASCADE" json:"organizer,omitempty"`

	// Computed at query time, never persisted.
	Distance          *float64 `gorm:"-" json:"distance,omitempty"`
	RegistrationCount *int64   `gorm:"-" json:"registration_count,omitempty"`
	IsRegistered      *bool    `gorm:"-" json:"is_registered,omitempty"`
	IsBookmarked      *bool    `gorm:"-" json:"is_bookmarked,omitempty"`
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}

// HasCapacity reports whether the event limits attendance.
func (e *Event) HasCapacity() bool {
	return e.Capacity != nil
}
