package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"eventscape/internal/featureflags"
	"eventscape/internal/geo"
	"eventscape/internal/models"
	"eventscape/internal/observability"
	"eventscape/internal/repository"
	"eventscape/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

const defaultNearbyRadiusKm = 10

type EventService struct {
	eventRepo        repository.EventRepository
	categoryRepo     repository.CategoryRepository
	registrationRepo repository.RegistrationRepository
	bookmarkRepo     repository.BookmarkRepository
	flags            *featureflags.Manager
	defaultRadiusKm  float64
	maxRadiusKm      float64
}

// EventServiceConfig tunes the nearby search.
type EventServiceConfig struct {
	DefaultRadiusKm float64
	MaxRadiusKm     float64
	Flags           *featureflags.Manager
}

func NewEventService(
	eventRepo repository.EventRepository,
	categoryRepo repository.CategoryRepository,
	registrationRepo repository.RegistrationRepository,
	bookmarkRepo repository.BookmarkRepository,
	cfg EventServiceConfig,
) *EventService {
	if cfg.DefaultRadiusKm <= 0 {
		cfg.DefaultRadiusKm = defaultNearbyRadiusKm
	}
	if cfg.MaxRadiusKm < cfg.DefaultRadiusKm {
		cfg.MaxRadiusKm = cfg.DefaultRadiusKm
	}
	return &EventService{
		eventRepo:        eventRepo,
		categoryRepo:     categoryRepo,
		registrationRepo: registrationRepo,
		bookmarkRepo:     bookmarkRepo,
		flags:            cfg.Flags,
		defaultRadiusKm:  cfg.DefaultRadiusKm,
		maxRadiusKm:      cfg.MaxRadiusKm,
	}
}

// ListEventsInput holds the optional listing filters. Lat and Lng must be
// supplied together; RadiusKm only applies when they are.
type ListEventsInput struct {
	CategoryID *uint
	Search     string
	From       *time.Time
	To         *time.Time
	Lat        *float64
	Lng        *float64
	RadiusKm   *float64
	Limit      int
	Offset     int
	ViewerID   uint
}

type NearbyInput struct {
	Lat      *float64
	Lng      *float64
	RadiusKm *float64
	Limit    int
	ViewerID uint
}

type DateRangeInput struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// CreateEventInput carries a new event. Optional fields are nil when absent.
type CreateEventInput struct {
	OrganizerID uint
	Title       string
	Description string
	Location    string
	Latitude    *float64
	Longitude   *float64
	StartDate   *time.Time
	EndDate     *time.Time
	ImageURL    string
	CategoryID  *uint
	Capacity    *int
	Price       *float64
}

// UpdateEventInput carries a partial event update. Nil fields are left unchanged;
// ClearCapacity and ClearPrice remove the limit or price.
type UpdateEventInput struct {
	RequesterID   uint
	EventID       uint
	Title         *string
	Description   *string
	Location      *string
	Latitude      *float64
	Longitude     *float64
	StartDate     *time.Time
	EndDate       *time.Time
	ImageURL      *string
	CategoryID    *uint
	Capacity      *int
	Price         *float64
	ClearCapacity bool
	ClearPrice    bool
}

func (s *EventService) List(ctx context.Context, in ListEventsInput) ([]models.Event, error) {
	filter := repository.EventFilter{
		CategoryID: in.CategoryID,
		Search:     strings.TrimSpace(in.Search),
		From:       in.From,
		To:         in.To,
		Limit:      in.Limit,
		Offset:     in.Offset,
	}
	if in.From != nil && in.To != nil && in.To.Before(*in.From) {
		return nil, models.NewValidationError("end_date must not be before start_date")
	}

	if in.Lat != nil || in.Lng != nil {
		center, err := parseCenter(in.Lat, in.Lng)
		if err != nil {
			return nil, err
		}
		filter.Center = &center
		filter.RadiusKm = s.radius(in.RadiusKm)
		filter.SQLDistance = s.flags.Enabled(featureflags.GeoPushdown, in.ViewerID)
	}

	return s.eventRepo.List(ctx, filter)
}

// Nearby returns events within the radius of a point, nearest first.
func (s *EventService) Nearby(ctx context.Context, in NearbyInput) ([]models.Event, error) {
	center, err := parseCenter(in.Lat, in.Lng)
	if err != nil {
		return nil, err
	}
	radius := s.radius(in.RadiusKm)
	pushdown := s.flags.Enabled(featureflags.GeoPushdown, in.ViewerID)

	span, ctx := observability.StartSpan(ctx, "events.nearby",
		attribute.Float64("geo.lat", center.Lat),
		attribute.Float64("geo.lng", center.Lng),
		attribute.Float64("geo.radius_km", radius),
		attribute.Bool("geo.sql_pushdown", pushdown),
	)
	defer span.End()

	events, err := s.eventRepo.List(ctx, repository.EventFilter{
		Center:      &center,
		RadiusKm:    radius,
		SQLDistance: pushdown,
		Limit:       in.Limit,
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	span.AddAttributes(attribute.Int("geo.results", len(events)))
	observability.NearbyQueryResults.Observe(float64(len(events)))
	return events, nil
}

// DateRange returns events overlapping [From, To], earliest start first.
func (s *EventService) DateRange(ctx context.Context, in DateRangeInput) ([]models.Event, error) {
	if in.From == nil || in.To == nil {
		return nil, models.NewValidationError("Start date and end date are required")
	}
	if in.To.Before(*in.From) {
		return nil, models.NewValidationError("end_date must not be before start_date")
	}
	return s.eventRepo.List(ctx, repository.EventFilter{From: in.From, To: in.To, Limit: in.Limit})
}

// Get returns an event with its registration count. When viewerID is non-zero
// the viewer's registration and bookmark flags are filled in.
func (s *EventService) Get(ctx context.Context, id, viewerID uint) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.registrationRepo.CountConfirmed(ctx, id)
	if err != nil {
		return nil, err
	}
	event.RegistrationCount = &count

	if viewerID == 0 {
		return event, nil
	}
	registered, err := s.registrationRepo.Exists(ctx, viewerID, id)
	if err != nil {
		return nil, err
	}
	bookmarked, err := s.bookmarkRepo.Exists(ctx, viewerID, id)
	if err != nil {
		return nil, err
	}
	event.IsRegistered = &registered
	event.IsBookmarked = &bookmarked
	return event, nil
}

func (s *EventService) Create(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	title := strings.TrimSpace(in.Title)
	location := strings.TrimSpace(in.Location)
	if err := validation.ValidateEventCreate(validation.EventFields{
		Title:      &title,
		Location:   &location,
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		CategoryID: in.CategoryID,
		Capacity:   in.Capacity,
		Price:      in.Price,
	}); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.requireCategory(ctx, *in.CategoryID); err != nil {
		return nil, err
	}

	event := &models.Event{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Location:    location,
		Latitude:    *in.Latitude,
		Longitude:   *in.Longitude,
		StartDate:   in.StartDate.UTC(),
		EndDate:     in.EndDate.UTC(),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		CategoryID:  *in.CategoryID,
		OrganizerID: in.OrganizerID,
		Capacity:    in.Capacity,
		Price:       in.Price,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return s.eventRepo.GetByID(ctx, event.ID)
}

// Update applies a partial update. Only the organizer may update an event and
// the organizer itself never changes.
func (s *EventService) Update(ctx context.Context, in UpdateEventInput) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, in.EventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != in.RequesterID {
		return nil, models.NewForbiddenError("Not authorized to update this event")
	}

	if err := validation.ValidateEventUpdate(validation.EventFields{
		Title:      in.Title,
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		CategoryID: in.CategoryID,
		Capacity:   in.Capacity,
		Price:      in.Price,
	}); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if in.Title != nil {
		event.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		event.Description = strings.TrimSpace(*in.Description)
	}
	if in.Location != nil {
		if strings.TrimSpace(*in.Location) == "" {
			return nil, models.NewValidationError("location cannot be empty")
		}
		event.Location = strings.TrimSpace(*in.Location)
	}
	if in.Latitude != nil {
		event.Latitude = *in.Latitude
	}
	if in.Longitude != nil {
		event.Longitude = *in.Longitude
	}
	if in.StartDate != nil {
		event.StartDate = in.StartDate.UTC()
	}
	if in.EndDate != nil {
		event.EndDate = in.EndDate.UTC()
	}
	if err := validation.ValidateDateOrder(event.StartDate, event.EndDate); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.ImageURL != nil {
		event.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.CategoryID != nil && *in.CategoryID != event.CategoryID {
		if err := s.requireCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		event.CategoryID = *in.CategoryID
		event.Category = nil
	}
	switch {
	case in.ClearCapacity:
		event.Capacity = nil
	case in.Capacity != nil:
		event.Capacity = in.Capacity
	}
	switch {
	case in.ClearPrice:
		event.Price = nil
	case in.Price != nil:
		event.Price = in.Price
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return s.eventRepo.GetByID(ctx, event.ID)
}

// Delete removes an event. Only the organizer may delete it.
func (s *EventService) Delete(ctx context.Context, requesterID, eventID uint) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.OrganizerID != requesterID {
		return models.NewForbiddenError("Not authorized to delete this event")
	}
	return s.eventRepo.Delete(ctx, eventID)
}

func (s *EventService) requireCategory(ctx context.Context, id uint) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewValidationError("Category does not exist")
		}
		return err
	}
	return nil
}

// radius applies the default when unset and caps it at the configured maximum.
func (s *EventService) radius(requested *float64) float64 {
	if requested == nil || *requested <= 0 {
		return s.defaultRadiusKm
	}
	return min(*requested, s.maxRadiusKm)
}

func parseCenter(lat, lng *float64) (geo.Point, error) {
	if lat == nil || lng == nil {
		return geo.Point{}, models.NewValidationError("Latitude and longitude are required")
	}
	if err := validation.ValidateLatitude(*lat); err != nil {
		return geo.Point{}, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateLongitude(*lng); err != nil {
		return geo.Point{}, models.NewValidationError(err.Error())
	}
	return geo.Point{Lat: *lat, Lng: *lng}, nil
}
