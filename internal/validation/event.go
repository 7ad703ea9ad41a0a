package validation

import (
	"fmt"
	"strings"
	"time"
)

// EventFields holds the event attributes that carry constraints. Nil
// pointers are fields the caller did not supply.
type EventFields struct {
	Title      *string
	Location   *string
	Latitude   *float64
	Longitude  *float64
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID *uint
	Capacity   *int
	Price      *float64
}

// ValidateEventCreate requires every mandatory field and checks the
// constraints shared with updates.
func ValidateEventCreate(f EventFields) error {
	switch {
	case f.Title == nil || strings.TrimSpace(*f.Title) == "":
		return fmt.Errorf("title is required")
	case f.Location == nil || strings.TrimSpace(*f.Location) == "":
		return fmt.Errorf("location is required")
	case f.Latitude == nil || f.Longitude == nil:
		return fmt.Errorf("latitude and longitude are required")
	case f.StartDate == nil || f.EndDate == nil:
		return fmt.Errorf("start_date and end_date are required")
	case f.CategoryID == nil || *f.CategoryID == 0:
		return fmt.Errorf("category_id is required")
	}
	return ValidateEventUpdate(f)
}

// ValidateEventUpdate checks only the supplied fields. The date order is
// checked by the caller once the update is merged onto the stored event.
func ValidateEventUpdate(f EventFields) error {
	if f.Title != nil {
		if strings.TrimSpace(*f.Title) == "" {
			return fmt.Errorf("title cannot be empty")
		}
		if len(*f.Title) > 255 {
			return fmt.Errorf("title must not exceed 255 characters")
		}
	}
	if f.Latitude != nil {
		if err := ValidateLatitude(*f.Latitude); err != nil {
			return err
		}
	}
	if f.Longitude != nil {
		if err := ValidateLongitude(*f.Longitude); err != nil {
			return err
		}
	}
	if f.StartDate != nil && f.EndDate != nil {
		if err := ValidateDateOrder(*f.StartDate, *f.EndDate); err != nil {
			return err
		}
	}
	if f.Capacity != nil && *f.Capacity < 0 {
		return fmt.Errorf("capacity cannot be negative")
	}
	if f.Price != nil && *f.Price < 0 {
		return fmt.Errorf("price cannot be negative")
	}
	return nil
}

// ValidateDateOrder requires end to be strictly after start.
func ValidateDateOrder(start, end time.Time) error {
	if !end.After(start) {
		return fmt.Errorf("end_date must be after start_date")
	}
	return nil
}

// ValidateLatitude checks the WGS84 latitude range.
func ValidateLatitude(lat float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	return nil
}

// ValidateLongitude checks the WGS84 longitude range.
func ValidateLongitude(lng float64) error {
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	return nil
}

// ValidateCategoryName requires a non-empty name that fits the column.
func ValidateCategoryName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("category name is required")
	}
	if len(name) > 50 {
		return fmt.Errorf("category name must not exceed 50 characters")
	}
	return nil
}
