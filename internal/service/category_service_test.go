package service

import (
	"context"
	"testing"

	"eventscape/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_CreateRequiresName(t *testing.T) {
	t.Parallel()
	svc := NewCategoryService(noopCategoryRepo())

	_, err := svc.Create(context.Background(), CategoryInput{})
	assertAppError(t, err, models.CodeValidation, "Category name is required")

	_, err = svc.Create(context.Background(), CategoryInput{Name: ptr("   ")})
	assertAppError(t, err, models.CodeValidation, "Category name is required")

	got, err := svc.Create(context.Background(), CategoryInput{Name: ptr(" Music "), Icon: ptr("music")})
	require.NoError(t, err)
	assert.Equal(t, "Music", got.Name)
	assert.Equal(t, "music", got.Icon)
}

func TestCategoryService_UpdateIsPartial(t *testing.T) {
	t.Parallel()
	repo := noopCategoryRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Category, error) {
		return &models.Category{ID: id, Name: "Music", Description: "Live shows", Icon: "music"}, nil
	}
	svc := NewCategoryService(repo)

	got, err := svc.Update(context.Background(), 1, CategoryInput{Description: ptr("Concerts")})
	require.NoError(t, err)
	assert.Equal(t, "Music", got.Name)
	assert.Equal(t, "Concerts", got.Description)
	assert.Equal(t, "music", got.Icon)

	_, err = svc.Update(context.Background(), 1, CategoryInput{Name: ptr("")})
	assertValidationError(t, err)
}

func TestCategoryService_UpdateMissing(t *testing.T) {
	t.Parallel()
	repo := noopCategoryRepo()
	repo.getByIDFn = func(context.Context, uint) (*models.Category, error) {
		return nil, models.NewNotFoundError("Category")
	}
	_, err := NewCategoryService(repo).Update(context.Background(), 9, CategoryInput{Name: ptr("x")})
	assertAppError(t, err, models.CodeNotFound, "Category not found")
}
