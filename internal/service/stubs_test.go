package service

import (
	"context"
	"sync"
	"testing"

	"eventscape/internal/models"
	"eventscape/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	updatePasswdFn  func(context.Context, uint, string) error
	deleteFn        func(context.Context, uint) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return s.updatePasswdFn(ctx, id, hash)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(context.Context, uint) (*models.User, error) { return &models.User{}, nil },
		getByEmailFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:        func(context.Context, *models.User) error { return nil },
		updateFn:        func(context.Context, *models.User) error { return nil },
		updatePasswdFn:  func(context.Context, uint, string) error { return nil },
		deleteFn:        func(context.Context, uint) error { return nil },
	}
}

// memUserRepo keeps users in memory so auth flows can round-trip.
func memUserRepo() *userRepoStub {
	var (
		mu     sync.Mutex
		nextID uint
		byID   = map[uint]*models.User{}
	)
	repo := noopUserRepo()
	repo.createFn = func(_ context.Context, u *models.User) error {
		mu.Lock()
		defer mu.Unlock()
		for _, existing := range byID {
			if existing.Username == u.Username {
				return models.NewConflictError("Username is already in use")
			}
		}
		nextID++
		u.ID = nextID
		cp := *u
		byID[u.ID] = &cp
		return nil
	}
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		mu.Lock()
		defer mu.Unlock()
		for _, u := range byID {
			if u.Email == email {
				cp := *u
				return &cp, nil
			}
		}
		return nil, nil
	}
	repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		mu.Lock()
		defer mu.Unlock()
		u, ok := byID[id]
		if !ok {
			return nil, models.NewNotFoundError("User")
		}
		cp := *u
		return &cp, nil
	}
	repo.deleteFn = func(_ context.Context, id uint) error {
		mu.Lock()
		defer mu.Unlock()
		if _, ok := byID[id]; !ok {
			return models.NewNotFoundError("User")
		}
		delete(byID, id)
		return nil
	}
	return repo
}

type eventRepoStub struct {
	listFn         func(context.Context, repository.EventFilter) ([]models.Event, error)
	getByIDFn      func(context.Context, uint) (*models.Event, error)
	createFn       func(context.Context, *models.Event) error
	updateFn       func(context.Context, *models.Event) error
	deleteFn       func(context.Context, uint) error
	registeredByFn func(context.Context, uint) ([]models.Event, error)
}

func (s *eventRepoStub) List(ctx context.Context, f repository.EventFilter) ([]models.Event, error) {
	return s.listFn(ctx, f)
}
func (s *eventRepoStub) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	return s.getByIDFn(ctx, id)
}
func (s *eventRepoStub) Create(ctx context.Context, e *models.Event) error {
	return s.createFn(ctx, e)
}
func (s *eventRepoStub) Update(ctx context.Context, e *models.Event) error {
	return s.updateFn(ctx, e)
}
func (s *eventRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *eventRepoStub) ListRegisteredByUser(ctx context.Context, userID uint) ([]models.Event, error) {
	return s.registeredByFn(ctx, userID)
}

func noopEventRepo() *eventRepoStub {
	return &eventRepoStub{
		listFn: func(context.Context, repository.EventFilter) ([]models.Event, error) { return nil, nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Event, error) {
			return &models.Event{ID: id, Title: "Event"}, nil
		},
		createFn:       func(context.Context, *models.Event) error { return nil },
		updateFn:       func(context.Context, *models.Event) error { return nil },
		deleteFn:       func(context.Context, uint) error { return nil },
		registeredByFn: func(context.Context, uint) ([]models.Event, error) { return nil, nil },
	}
}

type categoryRepoStub struct {
	listFn    func(context.Context) ([]models.Category, error)
	getByIDFn func(context.Context, uint) (*models.Category, error)
	createFn  func(context.Context, *models.Category) error
	updateFn  func(context.Context, *models.Category) error
	deleteFn  func(context.Context, uint) error
}

func (s *categoryRepoStub) List(ctx context.Context) ([]models.Category, error) {
	return s.listFn(ctx)
}
func (s *categoryRepoStub) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	return s.getByIDFn(ctx, id)
}
func (s *categoryRepoStub) Create(ctx context.Context, c *models.Category) error {
	return s.createFn(ctx, c)
}
func (s *categoryRepoStub) Update(ctx context.Context, c *models.Category) error {
	return s.updateFn(ctx, c)
}
func (s *categoryRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCategoryRepo() *categoryRepoStub {
	return &categoryRepoStub{
		listFn: func(context.Context) ([]models.Category, error) { return nil, nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Category, error) {
			return &models.Category{ID: id, Name: "Music"}, nil
		},
		createFn: func(context.Context, *models.Category) error { return nil },
		updateFn: func(context.Context, *models.Category) error { return nil },
		deleteFn: func(context.Context, uint) error { return nil },
	}
}

type registrationRepoStub struct {
	createFn func(context.Context, uint, uint) (*models.Registration, error)
	deleteFn func(context.Context, uint, uint) error
	existsFn func(context.Context, uint, uint) (bool, error)
	countFn  func(context.Context, uint) (int64, error)
}

func (s *registrationRepoStub) Create(ctx context.Context, userID, eventID uint) (*models.Registration, error) {
	return s.createFn(ctx, userID, eventID)
}
func (s *registrationRepoStub) Delete(ctx context.Context, userID, eventID uint) error {
	return s.deleteFn(ctx, userID, eventID)
}
func (s *registrationRepoStub) Exists(ctx context.Context, userID, eventID uint) (bool, error) {
	return s.existsFn(ctx, userID, eventID)
}
func (s *registrationRepoStub) CountConfirmed(ctx context.Context, eventID uint) (int64, error) {
	return s.countFn(ctx, eventID)
}

func noopRegistrationRepo() *registrationRepoStub {
	return &registrationRepoStub{
		createFn: func(_ context.Context, userID, eventID uint) (*models.Registration, error) {
			return &models.Registration{ID: 1, UserID: userID, EventID: eventID, Status: models.RegistrationStatusConfirmed}, nil
		},
		deleteFn: func(context.Context, uint, uint) error { return nil },
		existsFn: func(context.Context, uint, uint) (bool, error) { return false, nil },
		countFn:  func(context.Context, uint) (int64, error) { return 0, nil },
	}
}

type bookmarkRepoStub struct {
	listFn   func(context.Context, uint) ([]models.Bookmark, error)
	createFn func(context.Context, uint, uint) (*models.Bookmark, error)
	deleteFn func(context.Context, uint, uint) error
	existsFn func(context.Context, uint, uint) (bool, error)
}

func (s *bookmarkRepoStub) ListByUser(ctx context.Context, userID uint) ([]models.Bookmark, error) {
	return s.listFn(ctx, userID)
}
func (s *bookmarkRepoStub) Create(ctx context.Context, userID, eventID uint) (*models.Bookmark, error) {
	return s.createFn(ctx, userID, eventID)
}
func (s *bookmarkRepoStub) Delete(ctx context.Context, userID, eventID uint) error {
	return s.deleteFn(ctx, userID, eventID)
}
func (s *bookmarkRepoStub) Exists(ctx context.Context, userID, eventID uint) (bool, error) {
	return s.existsFn(ctx, userID, eventID)
}

func noopBookmarkRepo() *bookmarkRepoStub {
	return &bookmarkRepoStub{
		listFn: func(context.Context, uint) ([]models.Bookmark, error) { return nil, nil },
		createFn: func(_ context.Context, userID, eventID uint) (*models.Bookmark, error) {
			return &models.Bookmark{ID: 1, UserID: userID, EventID: eventID}, nil
		},
		deleteFn: func(context.Context, uint, uint) error { return nil },
		existsFn: func(context.Context, uint, uint) (bool, error) { return false, nil },
	}
}

type notificationRepoStub struct {
	mu      sync.Mutex
	created []*models.Notification
	err     error
}

func (s *notificationRepoStub) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	n.ID = uint(len(s.created) + 1)
	s.created = append(s.created, n)
	return nil
}
func (s *notificationRepoStub) ListByUser(context.Context, uint, int, int) ([]models.Notification, error) {
	return nil, nil
}
func (s *notificationRepoStub) MarkRead(context.Context, uint, uint) error { return nil }

type publisherStub struct {
	published []*models.Notification
	err       error
}

func (p *publisherStub) Publish(_ context.Context, n *models.Notification) error {
	p.published = append(p.published, n)
	return p.err
}

func assertAppError(t *testing.T, err error, code, message string) {
	t.Helper()
	require.Error(t, err)
	appErr := models.AsAppError(err)
	assert.Equal(t, code, appErr.Code)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeValidation, "")
}

func ptr[T any](v T) *T { return &v }
