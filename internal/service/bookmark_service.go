package service

import (
	"context"

	"eventscape/internal/models"
	"eventscape/internal/repository"
)

type BookmarkService struct {
	bookmarkRepo repository.BookmarkRepository
	eventRepo    repository.EventRepository
}

func NewBookmarkService(bookmarkRepo repository.BookmarkRepository, eventRepo repository.EventRepository) *BookmarkService {
	return &BookmarkService{bookmarkRepo: bookmarkRepo, eventRepo: eventRepo}
}

// List returns the user's bookmarks with their events, soonest event first.
func (s *BookmarkService) List(ctx context.Context, userID uint) ([]models.Bookmark, error) {
	return s.bookmarkRepo.ListByUser(ctx, userID)
}

// Add bookmarks an existing event. Bookmarking it twice is a conflict.
func (s *BookmarkService) Add(ctx context.Context, userID, eventID uint) (*models.Bookmark, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.bookmarkRepo.Create(ctx, userID, eventID)
}

func (s *BookmarkService) Remove(ctx context.Context, userID, eventID uint) error {
	return s.bookmarkRepo.Delete(ctx, userID, eventID)
}

func (s *BookmarkService) IsBookmarked(ctx context.Context, userID, eventID uint) (bool, error) {
	return s.bookmarkRepo.Exists(ctx, userID, eventID)
}
