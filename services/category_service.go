package services

import (
	"context"
	"strings"

	"github.com/adboardhq/adboard/models"
	"github.com/adboardhq/adboard/repository"
)

const maxCategoryNameLen = 100

// CategoryService manages ad categories. Deleting one takes its ads and
// their comments with it, in one transaction.
type CategoryService interface {
	Create(ctx context.Context, principal Principal, name string) (*models.Category, error)
	Get(ctx context.Context, id uint) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Delete(ctx context.Context, principal Principal, id uint) error
}

type categoryService struct {
	categories repository.CategoryRepository
}

// NewCategoryService builds a CategoryService over the given repository.
func NewCategoryService(categories repository.CategoryRepository) CategoryService {
	return &categoryService{categories: categories}
}

func (s *categoryService) Create(ctx context.Context, principal Principal, name string) (*models.Category, error) {
	if !principal.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	var ve ValidationError
	name = strings.TrimSpace(name)
	if name == "" {
		ve.add("name", "name cannot be empty")
	} else if len([]rune(name)) > maxCategoryNameLen {
		ve.add("name", "name is too long")
	}
	if err := ve.errOrNil(); err != nil {
		return nil, err
	}

	category := &models.Category{Name: name}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

func (s *categoryService) Delete(ctx context.Context, principal Principal, id uint) error {
	if !principal.Authenticated() {
		return ErrNotAuthenticated
	}
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return translateNotFound(err)
	}
	return s.categories.DeleteCascade(ctx, id)
}
