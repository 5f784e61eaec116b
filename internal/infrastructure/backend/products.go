package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/domain/repository"
)

type productRepository struct {
	c *Client
}

// NewProductRepository creates the backend-backed product repository
func NewProductRepository(c *Client) repository.ProductRepository {
	return &productRepository{c: c}
}

type productsEnvelope struct {
	Products []entity.Product `json:"products"`
}

func (r *productRepository) List(ctx context.Context) ([]entity.Product, error) {
	var out productsEnvelope
	if err := r.c.get(ctx, "/products", nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out productsEnvelope
	q := url.Values{"ids": {strings.Join(ids, ",")}}
	if err := r.c.get(ctx, "/products", q, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (r *productRepository) Create(ctx context.Context, input *repository.ProductInput) error {
	return r.c.sendMultipart(ctx, http.MethodPost, "/add-product", productFields(input), productFiles(input), nil)
}

func (r *productRepository) Update(ctx context.Context, id string, input *repository.ProductInput) error {
	path := "/products/" + url.PathEscape(id)
	return r.c.sendMultipart(ctx, http.MethodPatch, path, productFields(input), productFiles(input), nil)
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	return r.c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil, "", nil)
}

func productFields(in *repository.ProductInput) []formField {
	return []formField{
		{"title", in.Title},
		{"description", in.Description},
		{"unitPrice", formatMajor(in.UnitPrice.Major())},
		{"bulkPrice", formatMajor(in.BulkPrice.Major())},
		{"sizes", strings.Join(in.Sizes, ",")},
		{"isTrending", strconv.FormatBool(in.IsTrending)},
		{"isDiscount", strconv.FormatBool(in.IsDiscount)},
		{"discountAmount", formatMajor(in.DiscountAmount.Major())},
		{"quantity", strconv.Itoa(in.Quantity)},
		{"manufacturingDate", in.ManufacturingDate},
		{"expiryDate", in.ExpiryDate},
		{"category", in.CategoryID},
	}
}

func productFiles(in *repository.ProductInput) []entity.Upload {
	if in.Image == nil {
		return nil
	}
	img := *in.Image
	img.Field = "image"
	return []entity.Upload{img}
}

func formatMajor(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type categoryRepository struct {
	c *Client
}

// NewCategoryRepository creates the backend-backed category repository
func NewCategoryRepository(c *Client) repository.CategoryRepository {
	return &categoryRepository{c: c}
}

func (r *categoryRepository) List(ctx context.Context) ([]entity.Category, error) {
	var out struct {
		Categories []entity.Category `json:"categories"`
	}
	if err := r.c.get(ctx, "/get-cat", nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

func (r *categoryRepository) Create(ctx context.Context, input *repository.CategoryInput) error {
	return r.c.sendJSON(ctx, http.MethodPost, "/create-cat", input, nil)
}

func (r *categoryRepository) Update(ctx context.Context, id string, input *repository.CategoryInput) error {
	return r.c.sendJSON(ctx, http.MethodPut, "/categories/"+url.PathEscape(id), input, nil)
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	return r.c.do(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, nil, "", nil)
}
