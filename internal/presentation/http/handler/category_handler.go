package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/trademate-console/internal/application/service"
	"github.com/sangkips/trademate-console/internal/presentation/http/dto/request"
)

const categoriesPath = "/categories"

// FormView carries the submit target of a simple form.
type FormView struct {
	Action string
}

// CategoryHandler handles category-related pages
type CategoryHandler struct {
	*Base
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(base *Base, categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{Base: base, categoryService: categoryService}
}

// List renders the category table
func (h *CategoryHandler) List(c *gin.Context) {
	var req request.ListRequest
	_ = c.ShouldBindQuery(&req)

	result, err := h.categoryService.ListCategories(c.Request.Context(), pageParams(req.Page, req.PerPage))
	if err != nil {
		h.errorPage(c, err)
		return
	}
	h.render(c, http.StatusOK, "categories", Page{
		Title:   "Categories",
		Section: "categories",
		Data:    Pager{Result: result, Base: categoriesPath},
	})
}

// New renders an empty category form
func (h *CategoryHandler) New(c *gin.Context) {
	h.form(c, http.StatusOK, "Add category", categoriesPath, &request.CategoryRequest{}, nil)
}

// Create creates a category in the admin's shop
func (h *CategoryHandler) Create(c *gin.Context) {
	var req request.CategoryRequest
	err := c.ShouldBind(&req)
	if err == nil {
		err = h.categoryService.CreateCategory(c.Request.Context(), currentUser(c), req.ToInput())
	}
	if err != nil {
		h.invalid(c, "Add category", categoriesPath, &req, err)
		return
	}
	h.redirect(c, categoriesPath, FlashSuccess, "Category created successfully")
}

// Edit renders the form filled with the category
func (h *CategoryHandler) Edit(c *gin.Context) {
	cat, err := h.categoryService.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, categoriesPath)
		return
	}
	req := &request.CategoryRequest{Name: cat.Name, Description: cat.Description}
	h.form(c, http.StatusOK, "Edit category", categoriesPath+"/"+cat.ID, req, nil)
}

// Update saves a category
func (h *CategoryHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var req request.CategoryRequest
	err := c.ShouldBind(&req)
	if err == nil {
		err = h.categoryService.UpdateCategory(c.Request.Context(), id, req.ToInput())
	}
	if err != nil {
		h.invalid(c, "Edit category", categoriesPath+"/"+id, &req, err)
		return
	}
	h.redirect(c, categoriesPath, FlashSuccess, "Category updated successfully")
}

func (h *CategoryHandler) invalid(c *gin.Context, title, action string, req *request.CategoryRequest, err error) {
	if fields, ok := formErrors(err); ok {
		h.form(c, http.StatusUnprocessableEntity, title, action, req, fields)
		return
	}
	h.fail(c, err, categoriesPath)
}

func (h *CategoryHandler) form(c *gin.Context, status int, title, action string, req *request.CategoryRequest, errs map[string]string) {
	h.render(c, status, "category_form", Page{
		Title:   title,
		Section: "categories",
		Form:    req,
		Errors:  errs,
		Data:    FormView{Action: action},
	})
}

// ConfirmDelete asks before deleting a category
func (h *CategoryHandler) ConfirmDelete(c *gin.Context) {
	cat, err := h.categoryService.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, categoriesPath)
		return
	}
	h.render(c, http.StatusOK, "confirm", Page{
		Title:   "Delete category",
		Section: "categories",
		Data: ConfirmView{
			Message: "Delete \"" + cat.Name + "\"? Products in this category keep their data but lose the category.",
			Action:  categoriesPath + "/" + cat.ID + "/delete",
			Cancel:  categoriesPath,
			Confirm: "Delete",
		},
	})
}

// Delete deletes a category
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categoryService.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, categoriesPath)
		return
	}
	h.redirect(c, categoriesPath, FlashSuccess, "Category deleted successfully")
}
