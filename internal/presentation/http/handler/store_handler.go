package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/trademate-console/internal/application/service"
	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/infrastructure/session"
	"github.com/sangkips/trademate-console/internal/presentation/http/dto/request"
	"github.com/sangkips/trademate-console/internal/presentation/http/dto/response"
	"github.com/sangkips/trademate-console/pkg/apperror"
	"github.com/sangkips/trademate-console/pkg/utils"
)

const (
	storePath        = "/store"
	storeReceiptPath = "/store/receipt"
)

// StoreView is the cashier's point-of-sale page.
type StoreView struct {
	Products       []entity.Product
	Search         string
	Terminal       *entity.Terminal
	Receipt        *service.ReceiptView
	IdempotencyKey string
	RefreshSeconds int
}

// StoreHandler serves the cashier's catalog, cart, and checkout modal
type StoreHandler struct {
	*Base
	catalog  *service.CatalogService
	checkout *service.CheckoutService
	refresh  time.Duration
}

// NewStoreHandler creates a new store handler. refresh is how often the page reloads the catalog.
func NewStoreHandler(base *Base, catalog *service.CatalogService, checkout *service.CheckoutService, refresh time.Duration) *StoreHandler {
	return &StoreHandler{Base: base, catalog: catalog, checkout: checkout, refresh: refresh}
}

// Show renders the store page. Opening it starts the session's catalog poller.
func (h *StoreHandler) Show(c *gin.Context) {
	cred := credentials(c)
	h.catalog.Watch(cred)

	search := strings.TrimSpace(c.Query("search"))
	var flash *session.Flash
	products, err := h.catalog.Products(c.Request.Context(), cred)
	if err != nil {
		if errors.Is(err, apperror.ErrTokenExpired) {
			h.expire(c)
			return
		}
		flash = &session.Flash{Kind: FlashError, Message: apperror.MessageOr(err, "Unable to load products")}
	}

	terminal, err := h.checkout.Terminal(c.Request.Context(), cred.SessionID)
	if err != nil {
		h.errorPage(c, err)
		return
	}

	view := StoreView{
		Products:       matchProducts(products, search),
		Search:         search,
		Terminal:       terminal,
		IdempotencyKey: utils.NewID(),
		RefreshSeconds: int(h.refresh.Seconds()),
	}
	if terminal.ModalOpen() {
		view.Receipt = h.checkout.Receipt(terminal, currentUser(c))
	}

	h.render(c, http.StatusOK, "store", Page{Title: "Store", Section: "store", Flash: flash, Data: view})
}

// Catalog renders the product grid fragment the page polls.
func (h *StoreHandler) Catalog(c *gin.Context) {
	products, err := h.catalog.Products(c.Request.Context(), credentials(c))
	if err != nil {
		if errors.Is(err, apperror.ErrTokenExpired) {
			h.expire(c)
			return
		}
		c.Status(http.StatusBadGateway)
		return
	}
	h.fragment(c, "store#catalog", StoreView{Products: matchProducts(products, c.Query("search"))})
}

// Products returns the session's catalog as JSON
// @Summary Catalog
// @Tags store
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /api/catalog [get]
func (h *StoreHandler) Products(c *gin.Context) {
	products, err := h.catalog.Products(c.Request.Context(), credentials(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Products retrieved successfully", products)
}

// Terminal returns the session's cart and checkout state as JSON
// @Summary Terminal state
// @Tags store
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /api/terminal [get]
func (h *StoreHandler) Terminal(c *gin.Context) {
	terminal, err := h.checkout.Terminal(c.Request.Context(), credentials(c).SessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Terminal retrieved successfully", gin.H{
		"terminal": terminal,
		"total":    terminal.Cart.Total(),
	})
}

// AddToCart adds one unit of a product
func (h *StoreHandler) AddToCart(c *gin.Context) {
	h.cartAction(c, func(productID string) error {
		_, err := h.checkout.AddToCart(c.Request.Context(), credentials(c), productID)
		return err
	})
}

// Increment adds one unit to a cart line
func (h *StoreHandler) Increment(c *gin.Context) {
	h.cartAction(c, func(productID string) error {
		_, err := h.checkout.Increment(c.Request.Context(), credentials(c).SessionID, productID)
		return err
	})
}

// Decrement removes one unit from a cart line, never below one
func (h *StoreHandler) Decrement(c *gin.Context) {
	h.cartAction(c, func(productID string) error {
		_, err := h.checkout.Decrement(c.Request.Context(), credentials(c).SessionID, productID)
		return err
	})
}

// Remove drops a cart line
func (h *StoreHandler) Remove(c *gin.Context) {
	h.cartAction(c, func(productID string) error {
		_, err := h.checkout.Remove(c.Request.Context(), credentials(c).SessionID, productID)
		return err
	})
}

// Clear empties the cart
func (h *StoreHandler) Clear(c *gin.Context) {
	if _, err := h.checkout.Clear(c.Request.Context(), credentials(c).SessionID); err != nil {
		h.fail(c, err, storePath)
		return
	}
	c.Redirect(http.StatusSeeOther, storePath)
}

func (h *StoreHandler) cartAction(c *gin.Context, fn func(productID string) error) {
	var req request.CartItemRequest
	if err := c.ShouldBind(&req); err != nil {
		h.redirect(c, storePath, FlashError, "No product selected")
		return
	}
	if err := fn(req.ProductID); err != nil {
		h.fail(c, err, storePath)
		return
	}
	c.Redirect(http.StatusSeeOther, storePath)
}

// Checkout previews the sale and opens the receipt modal
func (h *StoreHandler) Checkout(c *gin.Context) {
	if _, err := h.checkout.Checkout(c.Request.Context(), credentials(c).SessionID); err != nil {
		h.fail(c, err, storePath)
		return
	}
	c.Redirect(http.StatusSeeOther, storePath)
}

// Print commits the previewed sale and prints the receipt
func (h *StoreHandler) Print(c *gin.Context) {
	_, view, err := h.checkout.Print(c.Request.Context(), credentials(c), currentUser(c))
	if err != nil {
		// the terminal keeps the error for the modal; the toast repeats it
		h.fail(c, err, storePath)
		return
	}
	h.redirect(c, listURL(storeReceiptPath, autoPrintQuery, "1"), FlashSuccess, "Sale complete. Receipt "+view.ReceiptCode+" printed")
}

// Receipt renders the session's committed receipt for the browser's print dialog
func (h *StoreHandler) Receipt(c *gin.Context) {
	view, err := h.checkout.PrintableReceipt(c.Request.Context(), credentials(c).SessionID, currentUser(c))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			h.redirect(c, storePath, FlashWarning, "No completed sale to print yet")
			return
		}
		h.fail(c, err, storePath)
		return
	}
	h.render(c, http.StatusOK, "receipt_print", Page{
		Title:   "Receipt " + view.ReceiptCode,
		Section: "store",
		Data:    PrintView{Receipt: view, Back: storePath, AutoPrint: c.Query(autoPrintQuery) != ""},
	})
}

// Cancel closes the receipt modal
func (h *StoreHandler) Cancel(c *gin.Context) {
	if _, err := h.checkout.Cancel(c.Request.Context(), credentials(c).SessionID); err != nil {
		h.fail(c, err, storePath)
		return
	}
	c.Redirect(http.StatusSeeOther, storePath)
}

// matchProducts filters the catalog by a case-insensitive title search.
func matchProducts(products []entity.Product, search string) []entity.Product {
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return products
	}
	var out []entity.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), q) {
			out = append(out, p)
		}
	}
	return out
}
