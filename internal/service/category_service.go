package service

import (
	"context"
	"strings"

	"eventscape/internal/models"
	"eventscape/internal/repository"
	"eventscape/internal/validation"
)

type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

// CategoryInput carries category fields. On update nil fields are left unchanged.
type CategoryInput struct {
	Name        *string
	Description *string
	Icon        *string
}

func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	name := ""
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
	}
	if err := validation.ValidateCategoryName(name); err != nil {
		return nil, models.NewValidationError("Category name is required")
	}

	category := &models.Category{Name: name}
	if in.Description != nil {
		category.Description = strings.TrimSpace(*in.Description)
	}
	if in.Icon != nil {
		category.Icon = strings.TrimSpace(*in.Icon)
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Update merges the supplied fields. A supplied but blank name is rejected.
func (s *CategoryService) Update(ctx context.Context, id uint, in CategoryInput) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validation.ValidateCategoryName(name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		category.Name = name
	}
	if in.Description != nil {
		category.Description = strings.TrimSpace(*in.Description)
	}
	if in.Icon != nil {
		category.Icon = strings.TrimSpace(*in.Icon)
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	return s.categoryRepo.Delete(ctx, id)
}
