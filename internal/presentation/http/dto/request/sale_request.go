package request

// CartItemRequest identifies the product a cart button acts on
type CartItemRequest struct {
	ProductID string `form:"productId" binding:"required"`
}

// ReceiptSearchRequest represents the receipt lookup form
type ReceiptSearchRequest struct {
	ReceiptCode string `form:"code"`
}

// DashboardRequest represents dashboard query parameters
type DashboardRequest struct {
	Date string `form:"date"`
	Page int    `form:"page"`
}
