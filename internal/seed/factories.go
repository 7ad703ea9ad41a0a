package seed

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"eventscape/internal/geo"
	"eventscape/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

// Factory builds domain entities with realistic fake content. It never
// touches the database; Seed persists what it builds.
type Factory struct {
	faker *gofakeit.Faker
	rng   *rand.Rand
	opts  Options
	now   time.Time
}

// NewFactory creates a Factory. A non-zero opts.RandomSeed makes output
// reproducible.
func NewFactory(opts Options) *Factory {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		faker: gofakeit.New(seed),
		rng:   rand.New(rand.NewSource(seed)),
		opts:  opts.withDefaults(),
		now:   time.Now().UTC(),
	}
}

var eventKinds = []string{
	"Festival", "Meetup", "Conference", "Workshop", "Night", "Fair",
	"Exhibit", "Marathon", "Mixer", "Screening", "Hike", "Gala",
}

// BuildUser returns an unsaved user with the given password hash.
func (f *Factory) BuildUser(passwordHash string) *models.User {
	first := f.faker.FirstName()
	last := f.faker.LastName()
	handle := strings.ToLower(fmt.Sprintf("%s%s%d", first, last[:1], f.rng.Intn(10000)))
	return &models.User{
		Username:  handle,
		Email:     handle + "@example.com",
		Password:  passwordHash,
		Name:      first + " " + last,
		AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", handle),
	}
}

// BuildEvent returns an unsaved event placed uniformly inside the configured
// radius and starting within the configured number of days.
func (f *Factory) BuildEvent(organizerID uint, category models.Category, index int) *models.Event {
	// sqrt keeps the spread uniform over the disc rather than bunched at the centre
	distance := f.opts.RadiusKm * math.Sqrt(f.rng.Float64())
	point := geo.Destination(geo.Point{Lat: f.opts.CenterLat, Lng: f.opts.CenterLng}, f.rng.Float64()*360, distance)

	start := f.now.
		AddDate(0, 0, 1+f.rng.Intn(f.opts.MaxDays)).
		Truncate(time.Hour).
		Add(time.Duration(8+f.rng.Intn(12)) * time.Hour)
	end := start.Add(time.Duration(1+f.rng.Intn(72)) * time.Hour)

	kind := eventKinds[f.rng.Intn(len(eventKinds))]
	title := fmt.Sprintf("%s %s", capitalize(f.faker.HipsterWord()), kind)

	event := &models.Event{
		Title:       title,
		Description: fmt.Sprintf("Join us for the %s! An event focused on %s. %s", title, category.Name, f.faker.Sentence(12)),
		Location:    fmt.Sprintf("%s, %s", f.faker.Street(), f.faker.City()),
		Latitude:    round(point.Lat, 8),
		Longitude:   round(point.Lng, 8),
		StartDate:   start,
		EndDate:     end,
		ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%d/400/200", index+1),
		CategoryID:  category.ID,
		OrganizerID: organizerID,
	}

	// a quarter of events are open-ended and free
	if f.rng.Intn(4) > 0 {
		capacity := 50 + f.rng.Intn(451)
		price := round(f.rng.Float64()*100, 2)
		event.Capacity = &capacity
		event.Price = &price
	}
	return event
}

var notificationTitles = []string{
	"Upcoming Event Reminder", "New Event Posted", "Event Updated", "Event Canceled",
}

// BuildNotification returns an unsaved notification, optionally about event.
func (f *Factory) BuildNotification(userID uint, event *models.Event) *models.Notification {
	n := &models.Notification{
		UserID: userID,
		Title:  notificationTitles[f.rng.Intn(len(notificationTitles))],
		IsRead: f.rng.Intn(2) == 0,
	}
	if event != nil {
		n.EventID = &event.ID
		n.Message = fmt.Sprintf("Regarding %s on %s.", event.Title, event.StartDate.Format("Jan 2"))
	} else {
		n.Message = "Regarding your account."
	}
	return n
}

// Chance reports true with probability p.
func (f *Factory) Chance(p float64) bool {
	return f.rng.Float64() < p
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
