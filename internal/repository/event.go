package repository

import (
	"context"
	"time"

	"eventscape/internal/geo"
	"eventscape/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventFilter narrows an event listing. Every set field is combined with AND.
type EventFilter struct {
	CategoryID *uint
	Search     string
	// From and To select events whose [start_date, end_date] overlaps the window.
	From *time.Time
	To   *time.Time
	// Center and RadiusKm restrict results to a Haversine radius and order
	// them nearest first.
	Center   *geo.Point
	RadiusKm float64
	// SQLDistance evaluates the radius inside PostgreSQL instead of in process.
	SQLDistance bool
	Limit       int
	Offset      int
}

// EventRepository defines persistence operations for events.
type EventRepository interface {
	List(ctx context.Context, filter EventFilter) ([]models.Event, error)
	GetByID(ctx context.Context, id uint) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id uint) error
	ListRegisteredByUser(ctx context.Context, userID uint) ([]models.Event, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository returns a new EventRepository implementation.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)
	q := applyEventFilter(readDB(r.db).WithContext(ctx).Model(&models.Event{}), filter)

	if filter.Center == nil {
		// date windows read chronologically
		if filter.From != nil || filter.To != nil {
			q = q.Order("events.start_date ASC")
		}
		var events []models.Event
		if err := q.Preload("Category").Order("events.id ASC").Limit(limit).Offset(offset).Find(&events).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		return events, nil
	}

	center := *filter.Center
	box := geo.Bounds(center, filter.RadiusKm)
	q = q.Where("events.latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat)
	if box.LngBounded {
		q = q.Where("events.longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng)
	}

	if filter.SQLDistance && q.Dialector.Name() == "postgres" {
		return r.listWithinSQL(q, center, filter.RadiusKm, limit, offset)
	}
	return r.listWithinInProcess(q, center, filter.RadiusKm, limit, offset)
}

func (r *eventRepository) listWithinSQL(q *gorm.DB, center geo.Point, radiusKm float64, limit, offset int) ([]models.Event, error) {
	predicate, args := geo.SQLPredicate("events.latitude", "events.longitude", center, radiusKm)
	var events []models.Event
	err := q.Where(predicate, args...).
		Preload("Category").
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:  geo.SQLDistance("events.latitude", "events.longitude") + " ASC, events.id ASC",
			Vars: geo.SQLArgs(center),
		}}).
		Limit(limit).Offset(offset).
		Find(&events).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for i := range events {
		d := geo.Distance(center, geo.Point{Lat: events[i].Latitude, Lng: events[i].Longitude})
		events[i].Distance = &d
	}
	return events, nil
}

func (r *eventRepository) listWithinInProcess(q *gorm.DB, center geo.Point, radiusKm float64, limit, offset int) ([]models.Event, error) {
	var candidates []models.Event
	if err := q.Preload("Category").Find(&candidates).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	byID := make(map[uint]models.Event, len(candidates))
	located := make([]geo.Candidate, 0, len(candidates))
	for _, e := range candidates {
		byID[e.ID] = e
		located = append(located, geo.Candidate{ID: e.ID, Point: geo.Point{Lat: e.Latitude, Lng: e.Longitude}})
	}

	matches := geo.Filter(center, radiusKm, located)
	if offset >= len(matches) {
		return []models.Event{}, nil
	}
	matches = matches[offset:min(len(matches), offset+limit)]

	events := make([]models.Event, 0, len(matches))
	for _, m := range matches {
		e := byID[m.ID]
		d := m.Distance
		e.Distance = &d
		events = append(events, e)
	}
	return events, nil
}

func applyEventFilter(q *gorm.DB, f EventFilter) *gorm.DB {
	if f.CategoryID != nil {
		q = q.Where("events.category_id = ?", *f.CategoryID)
	}
	if f.Search != "" {
		pattern := containsPattern(f.Search)
		q = q.Where(`(LOWER(events.title) LIKE ? ESCAPE '\' OR LOWER(events.description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if f.From != nil {
		q = q.Where("events.end_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("events.start_date <= ?", *f.To)
	}
	return q
}

func (r *eventRepository) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	err := readDB(r.db).WithContext(ctx).
		Preload("Category").
		Preload("Organizer").
		First(&event, id).Error
	if err != nil {
		return nil, notFoundOr(err, "Event")
	}
	return &event, nil
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(event).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Update writes every mutable column. The organizer is never rewritten.
func (r *eventRepository) Update(ctx context.Context, event *models.Event) error {
	res := r.db.WithContext(ctx).Model(event).
		Select("title", "description", "location", "latitude", "longitude", "start_date", "end_date",
			"image_url", "category_id", "capacity", "price", "updated_at").
		Updates(event)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Event")
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Event{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Event")
	}
	return nil
}

// ListRegisteredByUser returns the events userID is registered for, soonest first.
func (r *eventRepository) ListRegisteredByUser(ctx context.Context, userID uint) ([]models.Event, error) {
	var events []models.Event
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Event{}).
		Joins("JOIN registrations ON registrations.event_id = events.id").
		Where("registrations.user_id = ?", userID).
		Preload("Category").
		Order("events.start_date ASC").
		Order("events.id ASC").
		Find(&events).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}
