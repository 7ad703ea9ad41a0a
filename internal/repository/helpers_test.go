package repository

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"eventscape/internal/database"
	"eventscape/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

// newTestDB returns an isolated in-memory SQLite database with foreign keys
// enforced and the full schema migrated. A single connection keeps every
// query on the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func quote(sql string) string {
	return regexp.QuoteMeta(sql)
}

var fixtureSeq int

func createUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	fixtureSeq++
	u := &models.User{
		Username: fmt.Sprintf("user%d", fixtureSeq),
		Email:    fmt.Sprintf("user%d@example.com", fixtureSeq),
		Password: "hash",
		Name:     fmt.Sprintf("User %d", fixtureSeq),
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name}
	require.NoError(t, db.Create(c).Error)
	return c
}

type eventOpt func(*models.Event)

func at(lat, lng float64) eventOpt {
	return func(e *models.Event) { e.Latitude, e.Longitude = lat, lng }
}

func starting(start time.Time) eventOpt {
	return func(e *models.Event) {
		e.StartDate = start
		e.EndDate = start.Add(2 * time.Hour)
	}
}

func withCapacity(n int) eventOpt {
	return func(e *models.Event) { e.Capacity = &n }
}

func titled(title string) eventOpt {
	return func(e *models.Event) { e.Title = title }
}

func createEvent(t *testing.T, db *gorm.DB, organizer *models.User, category *models.Category, opts ...eventOpt) *models.Event {
	t.Helper()
	start := time.Date(2030, 6, 1, 18, 0, 0, 0, time.UTC)
	e := &models.Event{
		Title:       "Event",
		Description: "Something happening",
		Location:    "Somewhere",
		Latitude:    40.7128,
		Longitude:   -74.0060,
		StartDate:   start,
		EndDate:     start.Add(2 * time.Hour),
		CategoryID:  category.ID,
		OrganizerID: organizer.ID,
	}
	for _, opt := range opts {
		opt(e)
	}
	require.NoError(t, NewEventRepository(db).Create(t.Context(), e))
	return e
}
