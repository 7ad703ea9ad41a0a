package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetBookmarks handles GET /api/bookmarks
// @Summary List bookmarks
// @Tags bookmarks
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Bookmark
// @Router /bookmarks [get]
func (s *Server) GetBookmarks(c *fiber.Ctx) error {
	bookmarks, err := s.bookmarkService.List(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(bookmarks)
}

// AddBookmark handles POST /api/bookmarks/:eventId
// @Summary Bookmark an event
// @Tags bookmarks
// @Produce json
// @Security BearerAuth
// @Param eventId path int true "Event ID"
// @Success 201 {object} models.Bookmark
// @Failure 400 {object} models.ErrorResponse "Already bookmarked"
// @Failure 404 {object} models.ErrorResponse
// @Router /bookmarks/{eventId} [post]
func (s *Server) AddBookmark(c *fiber.Ctx) error {
	eventID, err := s.parseID(c, "eventId")
	if err != nil {
		return nil
	}

	bookmark, err := s.bookmarkService.Add(c.UserContext(), currentUserID(c), eventID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(bookmark)
}

// RemoveBookmark handles DELETE /api/bookmarks/:eventId
// @Summary Remove bookmark
// @Tags bookmarks
// @Produce json
// @Security BearerAuth
// @Param eventId path int true "Event ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /bookmarks/{eventId} [delete]
func (s *Server) RemoveBookmark(c *fiber.Ctx) error {
	eventID, err := s.parseID(c, "eventId")
	if err != nil {
		return nil
	}

	if err := s.bookmarkService.Remove(c.UserContext(), currentUserID(c), eventID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Bookmark removed successfully"})
}

// CheckBookmark handles GET /api/bookmarks/:eventId/check
// @Summary Check bookmark status
// @Tags bookmarks
// @Produce json
// @Security BearerAuth
// @Param eventId path int true "Event ID"
// @Success 200 {object} object{isBookmarked=bool}
// @Router /bookmarks/{eventId}/check [get]
func (s *Server) CheckBookmark(c *fiber.Ctx) error {
	eventID, err := s.parseID(c, "eventId")
	if err != nil {
		return nil
	}

	ok, err := s.bookmarkService.IsBookmarked(c.UserContext(), currentUserID(c), eventID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"isBookmarked": ok})
}
