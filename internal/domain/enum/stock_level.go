package enum

// LowStockThreshold is the quantity below which a product shows a low-stock warning.
const LowStockThreshold = 10

// StockLevel classifies a product's remaining quantity on the store page
type StockLevel int

const (
	StockLevelInStock    StockLevel = 0
	StockLevelLowStock   StockLevel = 1
	StockLevelOutOfStock StockLevel = 2
)

// ClassifyStock maps a quantity onto a stock level.
func ClassifyStock(quantity int) StockLevel {
	switch {
	case quantity <= 0:
		return StockLevelOutOfStock
	case quantity < LowStockThreshold:
		return StockLevelLowStock
	default:
		return StockLevelInStock
	}
}

func (s StockLevel) String() string {
	return [...]string{"In stock", "Low stock!", "Out of stock!"}[s]
}

// CSSClass is the style hook used by the store templates.
func (s StockLevel) CSSClass() string {
	return [...]string{"stock-ok", "stock-low", "stock-out"}[s]
}
