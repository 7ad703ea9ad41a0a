package server

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"eventscape/internal/models"
	"eventscape/internal/service"

	"github.com/gofiber/fiber/v2"
)

// optional records whether a JSON field was present, so a partial update can
// tell an omitted field from an explicit null.
type optional[T any] struct {
	Set   bool
	Value *T
}

func (o *optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

type eventRequest struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Location    *string           `json:"location"`
	Latitude    *float64          `json:"latitude"`
	Longitude   *float64          `json:"longitude"`
	StartDate   *string           `json:"start_date"`
	EndDate     *string           `json:"end_date"`
	ImageURL    *string           `json:"image_url"`
	CategoryID  *uint             `json:"category_id"`
	Capacity    optional[int]     `json:"capacity"`
	Price       optional[float64] `json:"price"`
}

// parseDates converts the request's date strings. Bad input writes a 400.
func (r *eventRequest) parseDates(c *fiber.Ctx) (start, end *time.Time, err error) {
	parse := func(raw *string, name string) (*time.Time, error) {
		if raw == nil || *raw == "" {
			return nil, nil
		}
		t, perr := parseTimestamp(*raw)
		if perr != nil {
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid "+name))
			return nil, errResponseWritten
		}
		return &t, nil
	}
	if start, err = parse(r.StartDate, "start_date"); err != nil {
		return nil, nil, err
	}
	if end, err = parse(r.EndDate, "end_date"); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GetEvents handles GET /api/events
// @Summary List events
// @Description Filter by category, text, date window and distance from a point
// @Tags events
// @Produce json
// @Param category_id query int false "Category ID"
// @Param search query string false "Matches title or description"
// @Param start_date query string false "Window start (RFC3339 or YYYY-MM-DD)"
// @Param end_date query string false "Window end (RFC3339 or YYYY-MM-DD)"
// @Param lat query number false "Latitude"
// @Param lng query number false "Longitude"
// @Param radius query number false "Radius in km"
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.Event
// @Failure 400 {object} models.ErrorResponse
// @Router /events [get]
func (s *Server) GetEvents(c *fiber.Ctx) error {
	categoryID, err := queryUint(c, "category_id")
	if err != nil {
		return nil
	}
	from, err := queryTime(c, "start_date")
	if err != nil {
		return nil
	}
	to, err := queryTime(c, "end_date")
	if err != nil {
		return nil
	}
	lat, err := queryFloat(c, "lat")
	if err != nil {
		return nil
	}
	lng, err := queryFloat(c, "lng")
	if err != nil {
		return nil
	}
	radius, err := queryFloat(c, "radius")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPaginationLimit)
	viewerID, _ := s.optionalUserID(c)

	ctx, cancel := context.WithTimeout(c.UserContext(), listTimeout)
	defer cancel()

	events, err := s.eventService.List(ctx, service.ListEventsInput{
		CategoryID: categoryID,
		Search:     c.Query("search"),
		From:       from,
		To:         to,
		Lat:        lat,
		Lng:        lng,
		RadiusKm:   radius,
		Limit:      page.Limit,
		Offset:     page.Offset,
		ViewerID:   viewerID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(events)
}

// GetNearbyEvents handles GET /api/events/nearby
// @Summary Events near a point
// @Description Events within radius km of lat/lng, nearest first
// @Tags events
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Param radius query number false "Radius in km" default(10)
// @Param limit query int false "Limit" default(20)
// @Success 200 {array} models.Event
// @Failure 400 {object} models.ErrorResponse
// @Router /events/nearby [get]
func (s *Server) GetNearbyEvents(c *fiber.Ctx) error {
	lat, err := queryFloat(c, "lat")
	if err != nil {
		return nil
	}
	lng, err := queryFloat(c, "lng")
	if err != nil {
		return nil
	}
	radius, err := queryFloat(c, "radius")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPaginationLimit)
	viewerID, _ := s.optionalUserID(c)

	ctx, cancel := context.WithTimeout(c.UserContext(), listTimeout)
	defer cancel()

	events, err := s.eventService.Nearby(ctx, service.NearbyInput{
		Lat:      lat,
		Lng:      lng,
		RadiusKm: radius,
		Limit:    page.Limit,
		ViewerID: viewerID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(events)
}

// GetEventsByDateRange handles GET /api/events/dates
// @Summary Events in a date window
// @Tags events
// @Produce json
// @Param start_date query string true "Window start"
// @Param end_date query string true "Window end"
// @Param limit query int false "Limit" default(20)
// @Success 200 {array} models.Event
// @Failure 400 {object} models.ErrorResponse
// @Router /events/dates [get]
func (s *Server) GetEventsByDateRange(c *fiber.Ctx) error {
	from, err := queryTime(c, "start_date")
	if err != nil {
		return nil
	}
	to, err := queryTime(c, "end_date")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPaginationLimit)

	ctx, cancel := context.WithTimeout(c.UserContext(), listTimeout)
	defer cancel()

	events, err := s.eventService.DateRange(ctx, service.DateRangeInput{
		From:  from,
		To:    to,
		Limit: page.Limit,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(events)
}

// GetEvent handles GET /api/events/:id
// @Summary Get event
// @Description Includes registration_count; is_registered and is_bookmarked when authenticated
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} models.Event
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id} [get]
func (s *Server) GetEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)

	event, err := s.eventService.Get(c.UserContext(), id, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(event)
}

// CreateEvent handles POST /api/events
// @Summary Create event
// @Description The caller becomes the organizer
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{title=string,description=string,location=string,latitude=number,longitude=number,start_date=string,end_date=string,image_url=string,category_id=int,capacity=int,price=number} true "Event"
// @Success 201 {object} models.Event
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /events [post]
func (s *Server) CreateEvent(c *fiber.Ctx) error {
	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	start, end, err := req.parseDates(c)
	if err != nil {
		return nil
	}

	event, err := s.eventService.Create(c.UserContext(), service.CreateEventInput{
		OrganizerID: currentUserID(c),
		Title:       deref(req.Title),
		Description: deref(req.Description),
		Location:    deref(req.Location),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		StartDate:   start,
		EndDate:     end,
		ImageURL:    deref(req.ImageURL),
		CategoryID:  req.CategoryID,
		Capacity:    req.Capacity.Value,
		Price:       req.Price.Value,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(event)
}

// UpdateEvent handles PUT /api/events/:id
// @Summary Update event
// @Description Partial update; organizer only. A null capacity or price clears it.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} models.Event
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id} [put]
func (s *Server) UpdateEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	start, end, err := req.parseDates(c)
	if err != nil {
		return nil
	}

	event, err := s.eventService.Update(c.UserContext(), service.UpdateEventInput{
		RequesterID:   currentUserID(c),
		EventID:       id,
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		StartDate:     start,
		EndDate:       end,
		ImageURL:      req.ImageURL,
		CategoryID:    req.CategoryID,
		Capacity:      req.Capacity.Value,
		Price:         req.Price.Value,
		ClearCapacity: req.Capacity.Set && req.Capacity.Value == nil,
		ClearPrice:    req.Price.Set && req.Price.Value == nil,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(event)
}

// DeleteEvent handles DELETE /api/events/:id
// @Summary Delete event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id} [delete]
func (s *Server) DeleteEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.eventService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Event deleted successfully"})
}

// RegisterForEvent handles POST /api/events/:id/register
// @Summary Register for event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 201 {object} models.Registration
// @Failure 400 {object} models.ErrorResponse "Already registered or at capacity"
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id}/register [post]
func (s *Server) RegisterForEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	registration, err := s.registrationService.Register(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(registration)
}

// CancelRegistration handles DELETE /api/events/:id/register
// @Summary Cancel registration
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id}/register [delete]
func (s *Server) CancelRegistration(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.registrationService.Cancel(c.UserContext(), currentUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Registration cancelled successfully"})
}
