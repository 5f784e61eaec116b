package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/trademate-console/internal/application/service"
	"github.com/sangkips/trademate-console/internal/infrastructure/session"
	"github.com/sangkips/trademate-console/internal/presentation/http/dto/request"
	"github.com/sangkips/trademate-console/pkg/apperror"
)

const receiptsPath = "/receipts"

// ReceiptSearchView is the receipt lookup page.
type ReceiptSearchView struct {
	Code    string
	Details *service.ReceiptDetails
}

// ReceiptHandler handles receipt search and reprint
type ReceiptHandler struct {
	*Base
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(base *Base, receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{Base: base, receiptService: receiptService}
}

// Search renders the lookup form and, when a code is given, the receipt
func (h *ReceiptHandler) Search(c *gin.Context) {
	var req request.ReceiptSearchRequest
	_ = c.ShouldBindQuery(&req)

	page := Page{Title: "Receipts", Section: "receipts"}
	view := ReceiptSearchView{Code: req.ReceiptCode}
	status := http.StatusOK

	if req.ReceiptCode != "" {
		details, err := h.receiptService.Search(c.Request.Context(), req.ReceiptCode)
		switch {
		case err == nil:
			view.Details = details
		case errors.Is(err, apperror.ErrTokenExpired):
			h.expire(c)
			return
		default:
			if fields, ok := formErrors(err); ok {
				page.Errors = fields
				status = http.StatusUnprocessableEntity
			} else {
				status = apperror.GetAppError(err).Code
				page.Flash = &session.Flash{Kind: FlashError, Message: receiptLookupMessage(err)}
			}
		}
	}

	page.Data = view
	h.render(c, status, "receipts", page)
}

// Reprint marks the receipt reprinted and sends the COPY to the printer
func (h *ReceiptHandler) Reprint(c *gin.Context) {
	code := c.Param("code")
	back := listURL(receiptsPath, "code", code)

	details, err := h.receiptService.Reprint(c.Request.Context(), code)
	if err != nil {
		if details != nil {
			h.redirect(c, back, FlashWarning, "Receipt marked as reprinted but printing failed: "+err.Error())
			return
		}
		h.fail(c, err, back)
		return
	}
	printURL := listURL(receiptsPath+"/"+details.View.ReceiptCode+"/print", autoPrintQuery, "1")
	h.redirect(c, printURL, FlashSuccess, "Receipt "+details.View.ReceiptCode+" reprinted")
}

// Print renders a receipt for the browser's print dialog. A receipt printed
// before carries the COPY watermark.
func (h *ReceiptHandler) Print(c *gin.Context) {
	code := c.Param("code")
	details, err := h.receiptService.Search(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, apperror.ErrTokenExpired) {
			h.expire(c)
			return
		}
		h.redirect(c, listURL(receiptsPath, "code", code), FlashError, receiptLookupMessage(err))
		return
	}
	h.render(c, http.StatusOK, "receipt_print", Page{
		Title:   "Receipt " + details.View.ReceiptCode,
		Section: "receipts",
		Data: PrintView{
			Receipt:   &details.View,
			Back:      listURL(receiptsPath, "code", details.View.ReceiptCode),
			AutoPrint: c.Query(autoPrintQuery) != "",
		},
	})
}

func receiptLookupMessage(err error) string {
	if errors.Is(err, apperror.ErrNotFound) {
		return "No receipt found with that ID"
	}
	return apperror.MessageOr(err, "Unable to search receipts, please try again")
}
