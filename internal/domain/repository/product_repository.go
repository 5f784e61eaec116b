package repository

import (
	"context"

	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/pkg/money"
)

// ProductInput carries the product form fields sent on create and update
type ProductInput struct {
	Title             string
	Description       string
	UnitPrice         money.Amount
	BulkPrice         money.Amount
	Quantity          int
	Sizes             entity.Sizes
	IsTrending        bool
	IsDiscount        bool
	DiscountAmount    money.Amount
	ManufacturingDate string // YYYY-MM-DD
	ExpiryDate        string // YYYY-MM-DD
	CategoryID        string
	Image             *entity.Upload
}

// ProductRepository defines the interface for product operations against the backend
type ProductRepository interface {
	List(ctx context.Context) ([]entity.Product, error)
	// GetByIDs fetches several products in one call
	GetByIDs(ctx context.Context, ids []string) ([]entity.Product, error)
	Create(ctx context.Context, input *ProductInput) error
	Update(ctx context.Context, id string, input *ProductInput) error
	Delete(ctx context.Context, id string) error
}

// CategoryInput carries the category form fields
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Shop        string `json:"shop,omitempty"`
}

// CategoryRepository defines the interface for category operations against the backend
type CategoryRepository interface {
	List(ctx context.Context) ([]entity.Category, error)
	Create(ctx context.Context, input *CategoryInput) error
	Update(ctx context.Context, id string, input *CategoryInput) error
	Delete(ctx context.Context, id string) error
}
