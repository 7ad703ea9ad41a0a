package repository

import (
	"context"
	"testing"

	"eventscape/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_ListAndMarkRead(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	u := createUser(t, db)
	other := createUser(t, db)

	first := &models.Notification{UserID: u.ID, Title: "Registered", Message: "See you there"}
	second := &models.Notification{UserID: u.ID, Title: "Cancelled", Message: "Maybe next time"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, &models.Notification{UserID: other.ID, Title: "x", Message: "y"}))

	list, err := repo.ListByUser(ctx, u.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.False(t, list[0].IsRead)

	assert.ErrorIs(t, repo.MarkRead(ctx, other.ID, first.ID), models.ErrNotFound)
	require.NoError(t, repo.MarkRead(ctx, u.ID, first.ID))

	list, err = repo.ListByUser(ctx, u.ID, 10, 0)
	require.NoError(t, err)
	assert.True(t, list[1].IsRead)
}

func TestNotificationEventSetNullOnDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	org := createUser(t, db)
	e := createEvent(t, db, org, createCategory(t, db, "Music"))
	n := &models.Notification{UserID: org.ID, EventID: &e.ID, Title: "t", Message: "m"}
	require.NoError(t, repo.Create(ctx, n))

	require.NoError(t, NewEventRepository(db).Delete(ctx, e.ID))

	list, err := repo.ListByUser(ctx, org.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].EventID)
}
