// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"eventscape/internal/middleware"
	"eventscape/internal/models"
	"eventscape/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Default seed account, kept stable so local logins survive reseeding.
const (
	SeedUsername = "seed_user"
	SeedEmail    = "seed@example.com"
	SeedPassword = "password123"
)

// Options configuration for the seeder
type Options struct {
	NumUsers  int
	NumEvents int
	// Events are scattered within RadiusKm of the centre point.
	CenterLat float64
	CenterLng float64
	RadiusKm  float64
	// Events start within MaxDays of now.
	MaxDays     int
	ShouldClean bool
	// RandomSeed fixes the fake data generator; zero means time-based.
	RandomSeed int64
	// PasswordCost is the bcrypt cost for seeded accounts.
	PasswordCost int
}

func (o Options) withDefaults() Options {
	if o.NumUsers < 0 {
		o.NumUsers = 0
	}
	if o.NumEvents < 0 {
		o.NumEvents = 0
	}
	if o.RadiusKm <= 0 {
		o.RadiusKm = 25
	}
	if o.MaxDays <= 0 {
		o.MaxDays = 30
	}
	if o.CenterLat == 0 && o.CenterLng == 0 {
		// New York City
		o.CenterLat, o.CenterLng = 40.7128, -74.0060
	}
	if o.PasswordCost == 0 {
		o.PasswordCost = bcrypt.DefaultCost
	}
	return o
}

// Summary counts what a Seed run created.
type Summary struct {
	Users         int
	Categories    int
	Events        int
	Registrations int
	Bookmarks     int
	Notifications int
}

// Seed populates the database with a seed account, the category catalogue
// and fake events, registrations, bookmarks and notifications. Registrations
// go through the same admission path as the API, so capacity is respected.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	opts = opts.withDefaults()
	log := middleware.Logger.With(slog.String("component", "seed"))
	log.Info("starting database seeding",
		slog.Int("users", opts.NumUsers),
		slog.Int("events", opts.NumEvents),
		slog.Float64("center_lat", opts.CenterLat),
		slog.Float64("center_lng", opts.CenterLng),
		slog.Float64("radius_km", opts.RadiusKm),
	)

	if opts.ShouldClean {
		if err := ClearData(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
		log.Info("existing data cleared")
	}

	var (
		factory          = NewFactory(opts)
		userRepo         = repository.NewUserRepository(db)
		eventRepo        = repository.NewEventRepository(db)
		registrationRepo = repository.NewRegistrationRepository(db)
		bookmarkRepo     = repository.NewBookmarkRepository(db)
		notificationRepo = repository.NewNotificationRepository(db)
		summary          = &Summary{}
	)

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), opts.PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	mainUser, err := ensureSeedUser(ctx, userRepo, string(hash))
	if err != nil {
		return nil, fmt.Errorf("failed to create seed user: %w", err)
	}

	users := []*models.User{mainUser}
	for i := 0; i < opts.NumUsers; i++ {
		u := factory.BuildUser(string(hash))
		if err := userRepo.Create(ctx, u); err != nil {
			if errors.Is(err, models.ErrConflict) {
				continue
			}
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, u)
		summary.Users++
	}
	log.Info("users ready", slog.Int("created", summary.Users))

	categories, err := Categories(db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	summary.Categories = len(categories)

	events := make([]*models.Event, 0, opts.NumEvents)
	for i := 0; i < opts.NumEvents; i++ {
		organizer := users[i%len(users)]
		category := categories[i%len(categories)]
		e := factory.BuildEvent(organizer.ID, category, i)
		if err := eventRepo.Create(ctx, e); err != nil {
			return nil, fmt.Errorf("failed to create event: %w", err)
		}
		events = append(events, e)
	}
	summary.Events = len(events)
	log.Info("events created", slog.Int("count", summary.Events))

	for _, u := range users {
		for _, e := range events {
			if factory.Chance(0.3) {
				_, err := registrationRepo.Create(ctx, u.ID, e.ID)
				switch {
				case err == nil:
					summary.Registrations++
				case errors.Is(err, models.ErrConflict):
					// full or already registered
				default:
					return nil, fmt.Errorf("failed to register user %d: %w", u.ID, err)
				}
			}
			if factory.Chance(0.2) {
				if _, err := bookmarkRepo.Create(ctx, u.ID, e.ID); err == nil {
					summary.Bookmarks++
				} else if !errors.Is(err, models.ErrConflict) {
					return nil, fmt.Errorf("failed to bookmark: %w", err)
				}
			}
		}
	}

	for i := 0; i < 10; i++ {
		var about *models.Event
		if len(events) > 0 && factory.Chance(0.7) {
			about = events[i%len(events)]
		}
		if err := notificationRepo.Create(ctx, factory.BuildNotification(mainUser.ID, about)); err != nil {
			return nil, fmt.Errorf("failed to create notification: %w", err)
		}
		summary.Notifications++
	}

	log.Info("database seeding completed",
		slog.Int("registrations", summary.Registrations),
		slog.Int("bookmarks", summary.Bookmarks),
		slog.Int("notifications", summary.Notifications),
	)
	return summary, nil
}

func ensureSeedUser(ctx context.Context, repo repository.UserRepository, hash string) (*models.User, error) {
	existing, err := repo.GetByEmail(ctx, SeedEmail)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	user := &models.User{
		Username: SeedUsername,
		Email:    SeedEmail,
		Password: hash,
		Name:     "Seed User",
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ClearData removes all domain rows, children first.
func ClearData(ctx context.Context, db *gorm.DB) error {
	tables := []any{
		&models.Notification{},
		&models.Bookmark{},
		&models.Registration{},
		&models.Event{},
		&models.Category{},
		&models.User{},
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range tables {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(t).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
