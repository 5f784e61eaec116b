package service

import (
	"context"
	"sort"
	"strings"

	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/domain/repository"
	"github.com/sangkips/trademate-console/pkg/apperror"
	"github.com/sangkips/trademate-console/pkg/pagination"
)

// CategoryService handles category-related operations
type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// ListCategories lists categories, paged and sorted by name.
func (s *CategoryService) ListCategories(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Category], error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return strings.ToLower(categories[i].Name) < strings.ToLower(categories[j].Name)
	})
	if params == nil {
		params = pagination.DefaultPagination()
	}
	return pagination.Paginate(categories, params), nil
}

// GetCategory finds a category by id.
func (s *CategoryService) GetCategory(ctx context.Context, id string) (*entity.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i], nil
		}
	}
	return nil, apperror.NewNotFoundError("Category")
}

// CreateCategory creates a category in the admin's shop.
func (s *CategoryService) CreateCategory(ctx context.Context, admin entity.User, input *repository.CategoryInput) error {
	if err := validateCategory(input); err != nil {
		return err
	}
	input.Shop = admin.ShopID()
	return s.categoryRepo.Create(ctx, input)
}

// UpdateCategory renames or re-describes a category.
func (s *CategoryService) UpdateCategory(ctx context.Context, id string, input *repository.CategoryInput) error {
	if err := validateCategory(input); err != nil {
		return err
	}
	return s.categoryRepo.Update(ctx, id, input)
}

// DeleteCategory deletes a category.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	if id == "" {
		return apperror.NewNotFoundError("Category")
	}
	return s.categoryRepo.Delete(ctx, id)
}

func validateCategory(in *repository.CategoryInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	var errs []apperror.FieldError
	if in.Name == "" {
		errs = append(errs, apperror.FieldError{Field: "name", Message: "Please input the category name!"})
	}
	if in.Description == "" {
		errs = append(errs, apperror.FieldError{Field: "description", Message: "Please input the category description!"})
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}
