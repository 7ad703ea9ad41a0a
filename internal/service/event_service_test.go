package service

import (
	"context"
	"testing"
	"time"

	"eventscape/internal/featureflags"
	"eventscape/internal/models"
	"eventscape/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventFixture struct {
	events        *eventRepoStub
	categories    *categoryRepoStub
	registrations *registrationRepoStub
	bookmarks     *bookmarkRepoStub
}

func newEventFixture() *eventFixture {
	return &eventFixture{
		events:        noopEventRepo(),
		categories:    noopCategoryRepo(),
		registrations: noopRegistrationRepo(),
		bookmarks:     noopBookmarkRepo(),
	}
}

func (f *eventFixture) service(cfg EventServiceConfig) *EventService {
	return NewEventService(f.events, f.categories, f.registrations, f.bookmarks, cfg)
}

func ownedEvent(organizerID uint) func(context.Context, uint) (*models.Event, error) {
	start := time.Date(2030, 6, 1, 18, 0, 0, 0, time.UTC)
	return func(_ context.Context, id uint) (*models.Event, error) {
		return &models.Event{
			ID: id, Title: "Jazz Night", Location: "Blue Note",
			StartDate: start, EndDate: start.Add(2 * time.Hour),
			CategoryID: 1, OrganizerID: organizerID,
		}, nil
	}
}

func TestEventService_UpdateDeleteRequireOrganizer(t *testing.T) {
	t.Parallel()
	f := newEventFixture()
	f.events.getByIDFn = ownedEvent(1)
	updated, deleted := false, false
	f.events.updateFn = func(context.Context, *models.Event) error { updated = true; return nil }
	f.events.deleteFn = func(context.Context, uint) error { deleted = true; return nil }
	svc := f.service(EventServiceConfig{})

	_, err := svc.Update(context.Background(), UpdateEventInput{RequesterID: 2, EventID: 7, Title: ptr("Hijacked")})
	assertAppError(t, err, models.CodeForbidden, "Not authorized to update this event")

	err = svc.Delete(context.Background(), 2, 7)
	assertAppError(t, err, models.CodeForbidden, "Not authorized to delete this event")

	assert.False(t, updated)
	assert.False(t, deleted)

	require.NoError(t, svc.Delete(context.Background(), 1, 7))
	assert.True(t, deleted)
}

func TestEventService_UpdateMergesFields(t *testing.T) {
	t.Parallel()
	f := newEventFixture()
	var saved *models.Event
	f.events.updateFn = func(_ context.Context, e *models.Event) error {
		saved = e
		return nil
	}
	f.events.getByIDFn = func(ctx context.Context, id uint) (*models.Event, error) {
		if saved != nil {
			return saved, nil
		}
		return ownedEvent(1)(ctx, id)
	}
	svc := f.service(EventServiceConfig{})

	got, err := svc.Update(context.Background(), UpdateEventInput{
		RequesterID: 1, EventID: 7,
		Title:    ptr("  Late Jazz  "),
		Capacity: ptr(50),
	})
	require.NoError(t, err)
	assert.Equal(t, "Late Jazz", got.Title)
	assert.Equal(t, "Blue Note", got.Location)
	require.NotNil(t, got.Capacity)
	assert.Equal(t, 50, *got.Capacity)
	assert.Equal(t, uint(1), got.OrganizerID)

	got, err = svc.Update(context.Background(), UpdateEventInput{RequesterID: 1, EventID: 7, ClearCapacity: true})
	require.NoError(t, err)
	assert.Nil(t, got.Capacity)
}

func TestEventService_UpdateRejectsInvertedDates(t *testing.T) {
	t.Parallel()
	f := newEventFixture()
	f.events.getByIDFn = ownedEvent(1)
	svc := f.service(EventServiceConfig{})

	early := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Update(context.Background(), UpdateEventInput{RequesterID: 1, EventID: 7, EndDate: &early})
	assertAppError(t, err, models.CodeValidation, "end_date must be after start_date")
}

func TestEventService_Create(t *testing.T) {
	t.Parallel()
	start := time.Date(2030, 6, 1, 18, 0, 0, 0, time.UTC)
	valid := func() CreateEventInput {
		return CreateEventInput{
			OrganizerID: 4,
			Title:       "Jazz Night",
			Location:    "Blue Note",
			Latitude:    ptr(40.73),
			Longitude:   ptr(-74.0),
			StartDate:   ptr(start),
			EndDate:     ptr(start.Add(time.Hour)),
			CategoryID:  ptr(uint(2)),
		}
	}

	t.Run("stores organizer from identity", func(t *testing.T) {
		t.Parallel()
		f := newEventFixture()
		var created *models.Event
		f.events.createFn = func(_ context.Context, e *models.Event) error {
			e.ID = 10
			created = e
			return nil
		}
		f.events.getByIDFn = func(context.Context, uint) (*models.Event, error) { return created, nil }

		got, err := f.service(EventServiceConfig{}).Create(context.Background(), valid())
		require.NoError(t, err)
		assert.Equal(t, uint(10), got.ID)
		assert.Equal(t, uint(4), got.OrganizerID)
		assert.Nil(t, got.Capacity)
	})

	t.Run("end before start", func(t *testing.T) {
		t.Parallel()
		in := valid()
		in.EndDate = ptr(start.Add(-time.Hour))
		_, err := newEventFixture().service(EventServiceConfig{}).Create(context.Background(), in)
		assertValidationError(t, err)
	})

	t.Run("unknown category", func(t *testing.T) {
		t.Parallel()
		f := newEventFixture()
		f.categories.getByIDFn = func(context.Context, uint) (*models.Category, error) {
			return nil, models.NewNotFoundError("Category")
		}
		_, err := f.service(EventServiceConfig{}).Create(context.Background(), valid())
		assertAppError(t, err, models.CodeValidation, "Category does not exist")
	})
}

func TestEventService_Nearby(t *testing.T) {
	t.Parallel()

	t.Run("requires coordinates", func(t *testing.T) {
		t.Parallel()
		_, err := newEventFixture().service(EventServiceConfig{}).Nearby(context.Background(), NearbyInput{Lat: ptr(1.0)})
		assertAppError(t, err, models.CodeValidation, "Latitude and longitude are required")
	})

	t.Run("rejects out of range latitude", func(t *testing.T) {
		t.Parallel()
		_, err := newEventFixture().service(EventServiceConfig{}).Nearby(context.Background(), NearbyInput{Lat: ptr(95.0), Lng: ptr(0.0)})
		assertValidationError(t, err)
	})

	t.Run("defaults and caps the radius", func(t *testing.T) {
		t.Parallel()
		f := newEventFixture()
		var filters []repository.EventFilter
		f.events.listFn = func(_ context.Context, filter repository.EventFilter) ([]models.Event, error) {
			filters = append(filters, filter)
			return []models.Event{{ID: 1}}, nil
		}
		svc := f.service(EventServiceConfig{DefaultRadiusKm: 10, MaxRadiusKm: 100})

		_, err := svc.Nearby(context.Background(), NearbyInput{Lat: ptr(40.7), Lng: ptr(-74.0)})
		require.NoError(t, err)
		_, err = svc.Nearby(context.Background(), NearbyInput{Lat: ptr(40.7), Lng: ptr(-74.0), RadiusKm: ptr(5000.0), Limit: 5})
		require.NoError(t, err)

		require.Len(t, filters, 2)
		assert.Equal(t, 10.0, filters[0].RadiusKm)
		assert.Equal(t, 100.0, filters[1].RadiusKm)
		assert.Equal(t, 5, filters[1].Limit)
		require.NotNil(t, filters[0].Center)
		assert.Equal(t, 40.7, filters[0].Center.Lat)
		assert.False(t, filters[0].SQLDistance)
	})

	t.Run("geo_pushdown flag selects SQL distance", func(t *testing.T) {
		t.Parallel()
		f := newEventFixture()
		var filter repository.EventFilter
		f.events.listFn = func(_ context.Context, fl repository.EventFilter) ([]models.Event, error) {
			filter = fl
			return nil, nil
		}
		svc := f.service(EventServiceConfig{Flags: featureflags.NewManager("geo_pushdown=on")})
		_, err := svc.Nearby(context.Background(), NearbyInput{Lat: ptr(40.7), Lng: ptr(-74.0)})
		require.NoError(t, err)
		assert.True(t, filter.SQLDistance)
	})
}

func TestEventService_DateRange(t *testing.T) {
	t.Parallel()
	from := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	_, err := newEventFixture().service(EventServiceConfig{}).DateRange(context.Background(), DateRangeInput{From: &from})
	assertAppError(t, err, models.CodeValidation, "Start date and end date are required")

	_, err = newEventFixture().service(EventServiceConfig{}).DateRange(context.Background(), DateRangeInput{From: &to, To: &from})
	assertValidationError(t, err)

	f := newEventFixture()
	var filter repository.EventFilter
	f.events.listFn = func(_ context.Context, fl repository.EventFilter) ([]models.Event, error) {
		filter = fl
		return nil, nil
	}
	_, err = f.service(EventServiceConfig{}).DateRange(context.Background(), DateRangeInput{From: &from, To: &to, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, &from, filter.From)
	assert.Equal(t, &to, filter.To)
	assert.Equal(t, 3, filter.Limit)
	assert.Nil(t, filter.Center)
}

func TestEventService_ListGeoRequiresBothCoordinates(t *testing.T) {
	t.Parallel()
	f := newEventFixture()
	svc := f.service(EventServiceConfig{})

	_, err := svc.List(context.Background(), ListEventsInput{Lng: ptr(10.0)})
	assertValidationError(t, err)

	var filter repository.EventFilter
	f.events.listFn = func(_ context.Context, fl repository.EventFilter) ([]models.Event, error) {
		filter = fl
		return nil, nil
	}
	catID := uint(3)
	_, err = svc.List(context.Background(), ListEventsInput{CategoryID: &catID, Search: "  jazz ", Lat: ptr(1.0), Lng: ptr(2.0), RadiusKm: ptr(3.0)})
	require.NoError(t, err)
	assert.Equal(t, "jazz", filter.Search)
	assert.Equal(t, &catID, filter.CategoryID)
	assert.Equal(t, 3.0, filter.RadiusKm)
}

func TestEventService_GetAnnotatesViewer(t *testing.T) {
	t.Parallel()
	f := newEventFixture()
	f.registrations.countFn = func(context.Context, uint) (int64, error) { return 12, nil }
	f.registrations.existsFn = func(_ context.Context, userID, _ uint) (bool, error) { return userID == 5, nil }
	f.bookmarks.existsFn = func(context.Context, uint, uint) (bool, error) { return false, nil }
	svc := f.service(EventServiceConfig{})

	anon, err := svc.Get(context.Background(), 7, 0)
	require.NoError(t, err)
	require.NotNil(t, anon.RegistrationCount)
	assert.Equal(t, int64(12), *anon.RegistrationCount)
	assert.Nil(t, anon.IsRegistered)
	assert.Nil(t, anon.IsBookmarked)

	viewer, err := svc.Get(context.Background(), 7, 5)
	require.NoError(t, err)
	require.NotNil(t, viewer.IsRegistered)
	assert.True(t, *viewer.IsRegistered)
	require.NotNil(t, viewer.IsBookmarked)
	assert.False(t, *viewer.IsBookmarked)
}

func TestEventService_GetMissing(t *testing.T) {
	t.Parallel()
	f := newEventFixture()
	f.events.getByIDFn = func(context.Context, uint) (*models.Event, error) {
		return nil, models.NewNotFoundError("Event")
	}
	_, err := f.service(EventServiceConfig{}).Get(context.Background(), 7, 0)
	assertAppError(t, err, models.CodeNotFound, "Event not found")
}
