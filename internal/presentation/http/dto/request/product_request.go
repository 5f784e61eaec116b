package request

import (
	"mime/multipart"

	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/domain/repository"
	"github.com/sangkips/trademate-console/pkg/money"
)

// ProductRequest represents the product create/edit form
type ProductRequest struct {
	Title             string                `form:"title" binding:"required,max=255"`
	Description       string                `form:"description" binding:"required"`
	UnitPrice         float64               `form:"unitPrice" binding:"gte=0"`
	BulkPrice         float64               `form:"bulkPrice" binding:"gte=0"`
	Quantity          int                   `form:"quantity" binding:"gte=0"`
	Sizes             string                `form:"sizes"`
	IsTrending        bool                  `form:"isTrending"`
	IsDiscount        bool                  `form:"isDiscount"`
	DiscountAmount    float64               `form:"discountAmount" binding:"gte=0"`
	ManufacturingDate string                `form:"manufacturingDate" binding:"required,datetime=2006-01-02"`
	ExpiryDate        string                `form:"expiryDate" binding:"required,datetime=2006-01-02"`
	CategoryID        string                `form:"category" binding:"required"`
	Image             *multipart.FileHeader `form:"image"`
}

// ToInput converts the form into the backend payload. The image is read by the handler.
func (r *ProductRequest) ToInput() *repository.ProductInput {
	return &repository.ProductInput{
		Title:             r.Title,
		Description:       r.Description,
		UnitPrice:         money.FromMajor(r.UnitPrice),
		BulkPrice:         money.FromMajor(r.BulkPrice),
		Quantity:          r.Quantity,
		Sizes:             entity.ParseSizes(r.Sizes),
		IsTrending:        r.IsTrending,
		IsDiscount:        r.IsDiscount,
		DiscountAmount:    money.FromMajor(r.DiscountAmount),
		ManufacturingDate: r.ManufacturingDate,
		ExpiryDate:        r.ExpiryDate,
		CategoryID:        r.CategoryID,
	}
}

// ProductFilterRequest represents product list query parameters
type ProductFilterRequest struct {
	Filter  string `form:"filter" binding:"omitempty,oneof=all non-expired expired"`
	Search  string `form:"search"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}

// CategoryRequest represents the category create/edit form
type CategoryRequest struct {
	Name        string `form:"name" binding:"required,max=255"`
	Description string `form:"description" binding:"required"`
}

// ToInput converts the form into the backend payload.
func (r *CategoryRequest) ToInput() *repository.CategoryInput {
	return &repository.CategoryInput{Name: r.Name, Description: r.Description}
}

// ProductFormFrom fills the edit form from an existing product.
func ProductFormFrom(p entity.Product) *ProductRequest {
	return &ProductRequest{
		Title:             p.Title,
		Description:       p.Description,
		UnitPrice:         p.UnitPrice.Major(),
		BulkPrice:         p.BulkPrice.Major(),
		Quantity:          p.Quantity,
		Sizes:             p.Sizes.String(),
		IsTrending:        p.IsTrending,
		IsDiscount:        p.IsDiscount,
		DiscountAmount:    p.DiscountAmount.Major(),
		ManufacturingDate: p.ManufacturingDate.Day(),
		ExpiryDate:        p.ExpiryDate.Day(),
		CategoryID:        p.Category.ID,
	}
}
