package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/domain/repository"
	"github.com/sangkips/trademate-console/pkg/apperror"
	"github.com/sangkips/trademate-console/pkg/pagination"
)

// Product list filters
const (
	ProductFilterAll        = "all"
	ProductFilterNonExpired = "non-expired"
	ProductFilterExpired    = "expired"
)

// ProductService handles product-related operations
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	now          func() time.Time
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		now:          time.Now,
	}
}

// ListProductsInput holds list filters
type ListProductsInput struct {
	Filter string
	Search string
	Params *pagination.PaginationParams
}

// ListProducts fetches products and applies the expiry filter, search, and paging.
func (s *ProductService) ListProducts(ctx context.Context, input *ListProductsInput) (*pagination.PaginatedResult[entity.Product], error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	filtered := FilterProducts(products, input.Filter, s.now())

	if q := strings.ToLower(strings.TrimSpace(input.Search)); q != "" {
		var matched []entity.Product
		for _, p := range filtered {
			if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.CategoryName()), q) {
				matched = append(matched, p)
			}
		}
		filtered = matched
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return strings.ToLower(filtered[i].Title) < strings.ToLower(filtered[j].Title)
	})

	params := input.Params
	if params == nil {
		params = pagination.DefaultPagination()
	}
	return pagination.Paginate(filtered, params), nil
}

// FilterProducts applies the all / non-expired / expired filter.
func FilterProducts(products []entity.Product, filter string, now time.Time) []entity.Product {
	switch filter {
	case ProductFilterExpired, ProductFilterNonExpired:
	default:
		return append([]entity.Product(nil), products...)
	}
	wantExpired := filter == ProductFilterExpired
	out := make([]entity.Product, 0, len(products))
	for _, p := range products {
		if p.IsExpired(now) == wantExpired {
			out = append(out, p)
		}
	}
	return out
}

// GetProduct finds a product by id.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	products, err := s.productRepo.GetByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, apperror.NewNotFoundError("Product")
}

// Categories lists categories for the product form.
func (s *ProductService) Categories(ctx context.Context) ([]entity.Category, error) {
	return s.categoryRepo.List(ctx)
}

// CreateProduct validates and creates a product.
func (s *ProductService) CreateProduct(ctx context.Context, input *repository.ProductInput) error {
	if err := ValidateProduct(input); err != nil {
		return err
	}
	return s.productRepo.Create(ctx, input)
}

// UpdateProduct validates and updates a product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input *repository.ProductInput) error {
	if id == "" {
		return apperror.NewNotFoundError("Product")
	}
	if err := ValidateProduct(input); err != nil {
		return err
	}
	return s.productRepo.Update(ctx, id, input)
}

// DeleteProduct deletes a product.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return apperror.NewNotFoundError("Product")
	}
	return s.productRepo.Delete(ctx, id)
}

// ValidateProduct checks the cross-field rules the form bindings cannot express.
func ValidateProduct(in *repository.ProductInput) error {
	var errs []apperror.FieldError
	add := func(field, msg string) {
		errs = append(errs, apperror.FieldError{Field: field, Message: msg})
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" {
		add("title", "Please input the product title!")
	}
	if in.Description == "" {
		add("description", "Please input the product description!")
	}
	if in.UnitPrice < 0 {
		add("unitPrice", "Unit price cannot be negative")
	}
	if in.BulkPrice < 0 {
		add("bulkPrice", "Bulk price cannot be negative")
	}
	if in.Quantity < 0 {
		add("quantity", "Quantity cannot be negative")
	}
	if in.CategoryID == "" {
		add("category", "Please select a category!")
	}
	if in.IsDiscount {
		if in.DiscountAmount < 0 {
			add("discountAmount", "Discount cannot be negative")
		} else if in.DiscountAmount > in.UnitPrice {
			add("discountAmount", "Discount cannot exceed the unit price")
		}
	} else {
		in.DiscountAmount = 0
	}

	mfg, mfgErr := time.Parse(entity.DateLayout, in.ManufacturingDate)
	exp, expErr := time.Parse(entity.DateLayout, in.ExpiryDate)
	if mfgErr != nil {
		add("manufacturingDate", "Please select the manufacturing date!")
	}
	if expErr != nil {
		add("expiryDate", "Please select the expiry date!")
	}
	if mfgErr == nil && expErr == nil && !mfg.Before(exp) {
		add("expiryDate", "Expiry date must be after the manufacturing date")
	}

	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}
