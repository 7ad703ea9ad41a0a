package repository

import (
	"context"

	"eventscape/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookmarkRepository defines persistence operations for bookmarks.
type BookmarkRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]models.Bookmark, error)
	Create(ctx context.Context, userID, eventID uint) (*models.Bookmark, error)
	Delete(ctx context.Context, userID, eventID uint) error
	Exists(ctx context.Context, userID, eventID uint) (bool, error)
}

type bookmarkRepository struct {
	db *gorm.DB
}

// NewBookmarkRepository returns a new BookmarkRepository implementation.
func NewBookmarkRepository(db *gorm.DB) BookmarkRepository {
	return &bookmarkRepository{db: db}
}

// ListByUser returns the user's bookmarks with their events, soonest event first.
func (r *bookmarkRepository) ListByUser(ctx context.Context, userID uint) ([]models.Bookmark, error) {
	var bookmarks []models.Bookmark
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Bookmark{}).
		Joins("JOIN events ON events.id = bookmarks.event_id").
		Where("bookmarks.user_id = ?", userID).
		Preload("Event").
		Preload("Event.Category").
		Order("events.start_date ASC").
		Order("bookmarks.id ASC").
		Find(&bookmarks).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return bookmarks, nil
}

func (r *bookmarkRepository) Create(ctx context.Context, userID, eventID uint) (*models.Bookmark, error) {
	bookmark := &models.Bookmark{UserID: userID, EventID: eventID}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(bookmark).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, models.NewConflictError("Event is already bookmarked")
		}
		return nil, models.NewInternalError(err)
	}
	return bookmark, nil
}

func (r *bookmarkRepository) Delete(ctx context.Context, userID, eventID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Delete(&models.Bookmark{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Bookmark")
	}
	return nil
}

func (r *bookmarkRepository) Exists(ctx context.Context, userID, eventID uint) (bool, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Bookmark{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
