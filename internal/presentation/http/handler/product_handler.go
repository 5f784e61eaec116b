package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/trademate-console/internal/application/service"
	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/presentation/http/dto/request"
)

const productsPath = "/products"

// ProductListView is the product table page.
type ProductListView struct {
	Filter string
	Search string
	Pager  Pager
}

// ProductFormView carries what the product form needs besides the fields.
type ProductFormView struct {
	Action     string
	Categories []entity.Category
}

// ProductHandler handles product-related pages
type ProductHandler struct {
	*Base
	productService *service.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(base *Base, productService *service.ProductService) *ProductHandler {
	return &ProductHandler{Base: base, productService: productService}
}

// List renders the product table with the expiry filter and search
func (h *ProductHandler) List(c *gin.Context) {
	var filter request.ProductFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		filter = request.ProductFilterRequest{}
	}
	if filter.Filter == "" {
		filter.Filter = service.ProductFilterAll
	}

	result, err := h.productService.ListProducts(c.Request.Context(), &service.ListProductsInput{
		Filter: filter.Filter,
		Search: filter.Search,
		Params: pageParams(filter.Page, filter.PerPage),
	})
	if err != nil {
		h.errorPage(c, err)
		return
	}

	h.render(c, http.StatusOK, "products", Page{
		Title:   "Products",
		Section: "products",
		Data: ProductListView{
			Filter: filter.Filter,
			Search: filter.Search,
			Pager:  Pager{Result: result, Base: listURL(productsPath, "filter", filter.Filter, "search", filter.Search)},
		},
	})
}

// New renders an empty product form
func (h *ProductHandler) New(c *gin.Context) {
	h.form(c, http.StatusOK, "Add product", productsPath, &request.ProductRequest{}, nil)
}

// Create validates and creates a product
func (h *ProductHandler) Create(c *gin.Context) {
	h.save(c, "", "Add product", productsPath)
}

// Edit renders the form filled with the product
func (h *ProductHandler) Edit(c *gin.Context) {
	p, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, productsPath)
		return
	}
	h.form(c, http.StatusOK, "Edit product", productsPath+"/"+p.ID, request.ProductFormFrom(*p), nil)
}

// Update validates and saves a product
func (h *ProductHandler) Update(c *gin.Context) {
	id := c.Param("id")
	h.save(c, id, "Edit product", productsPath+"/"+id)
}

func (h *ProductHandler) save(c *gin.Context, id, title, action string) {
	var req request.ProductRequest
	if err := c.ShouldBind(&req); err != nil {
		h.invalid(c, title, action, &req, err)
		return
	}

	input := req.ToInput()
	upload, err := readUpload(req.Image, "image")
	if err != nil {
		h.invalid(c, title, action, &req, err)
		return
	}
	input.Image = upload

	ctx := c.Request.Context()
	if id == "" {
		err = h.productService.CreateProduct(ctx, input)
	} else {
		err = h.productService.UpdateProduct(ctx, id, input)
	}
	if err != nil {
		h.invalid(c, title, action, &req, err)
		return
	}

	message := "Product created successfully"
	if id != "" {
		message = "Product updated successfully"
	}
	h.redirect(c, productsPath, FlashSuccess, message)
}

// invalid re-renders the form with field errors, or reports a backend failure as a toast.
func (h *ProductHandler) invalid(c *gin.Context, title, action string, req *request.ProductRequest, err error) {
	if fields, ok := formErrors(err); ok {
		h.form(c, http.StatusUnprocessableEntity, title, action, req, fields)
		return
	}
	h.fail(c, err, productsPath)
}

func (h *ProductHandler) form(c *gin.Context, status int, title, action string, req *request.ProductRequest, errs map[string]string) {
	categories, err := h.productService.Categories(c.Request.Context())
	if err != nil {
		h.fail(c, err, productsPath)
		return
	}
	h.render(c, status, "product_form", Page{
		Title:   title,
		Section: "products",
		Form:    req,
		Errors:  errs,
		Data:    ProductFormView{Action: action, Categories: categories},
	})
}

// ConfirmDelete asks before deleting a product
func (h *ProductHandler) ConfirmDelete(c *gin.Context) {
	p, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, productsPath)
		return
	}
	h.render(c, http.StatusOK, "confirm", Page{
		Title:   "Delete product",
		Section: "products",
		Data: ConfirmView{
			Message: "Delete \"" + p.Title + "\"? This cannot be undone.",
			Action:  productsPath + "/" + p.ID + "/delete",
			Cancel:  productsPath,
			Confirm: "Delete",
		},
	})
}

// Delete deletes a product
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.productService.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, productsPath)
		return
	}
	h.redirect(c, productsPath, FlashSuccess, "Product deleted successfully")
}
