package database

import "eventscape/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models,
// ordered so referenced tables are created first.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Category{},
		&models.Event{},
		&models.Registration{},
		&models.Bookmark{},
		&models.Notification{},
	}
}
