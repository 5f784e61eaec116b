package entity

import (
	"errors"

	"github.com/sangkips/trademate-console/pkg/money"
)

// ErrOutOfStock is returned when a product with no remaining quantity is added to a cart.
var ErrOutOfStock = errors.New("product is out of stock")

// CartLine is a product snapshot and the quantity being sold.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// UnitPrice is the effective price of one unit.
func (l CartLine) UnitPrice() money.Amount {
	return l.Product.EffectivePrice()
}

// Subtotal is UnitPrice × Quantity.
func (l CartLine) Subtotal() money.Amount {
	return l.UnitPrice().Times(l.Quantity)
}

// SaleItem is the backend's per-line sale payload.
type SaleItem struct {
	ProductID    string `json:"productId"`
	QuantitySold int    `json:"quantitySold"`
}

// Cart is an ordered list of lines. Every operation returns a new Cart and leaves the receiver unchanged.
type Cart struct {
	Items []CartLine `json:"items"`
}

// NewCart builds a cart from lines, dropping any with a quantity below one.
func NewCart(lines ...CartLine) Cart {
	c := Cart{}
	for _, l := range lines {
		if l.Quantity >= 1 {
			c.Items = append(c.Items, l)
		}
	}
	return c
}

func (c Cart) clone() Cart {
	items := make([]CartLine, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items}
}

func (c Cart) index(productID string) int {
	for i, l := range c.Items {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add puts one unit of p in the cart, incrementing its line when already present.
func (c Cart) Add(p Product) (Cart, error) {
	if p.IsOutOfStock() {
		return c, ErrOutOfStock
	}
	out := c.clone()
	if i := out.index(p.ID); i >= 0 {
		out.Items[i].Quantity++
		return out, nil
	}
	out.Items = append(out.Items, CartLine{Product: p, Quantity: 1})
	return out, nil
}

// Increment adds one unit to an existing line. Unknown ids leave the cart unchanged.
func (c Cart) Increment(productID string) Cart {
	out := c.clone()
	if i := out.index(productID); i >= 0 {
		out.Items[i].Quantity++
	}
	return out
}

// Decrement removes one unit from a line; a line never drops below one.
func (c Cart) Decrement(productID string) Cart {
	out := c.clone()
	if i := out.index(productID); i >= 0 && out.Items[i].Quantity > 1 {
		out.Items[i].Quantity--
	}
	return out
}

// Remove drops a line.
func (c Cart) Remove(productID string) Cart {
	out := Cart{}
	for _, l := range c.Items {
		if l.Product.ID != productID {
			out.Items = append(out.Items, l)
		}
	}
	return out
}

// Clear returns an empty cart.
func (c Cart) Clear() Cart {
	return Cart{}
}

// Total is the sum of all line subtotals.
func (c Cart) Total() money.Amount {
	var total money.Amount
	for _, l := range c.Items {
		total += l.Subtotal()
	}
	return total
}

// Lines returns a copy of the lines in insertion order.
func (c Cart) Lines() []CartLine {
	return c.clone().Items
}

// Len is the number of distinct lines.
func (c Cart) Len() int {
	return len(c.Items)
}

// Units is the number of units across all lines.
func (c Cart) Units() int {
	n := 0
	for _, l := range c.Items {
		n += l.Quantity
	}
	return n
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Payload converts the cart into the backend sale payload.
func (c Cart) Payload() []SaleItem {
	items := make([]SaleItem, 0, len(c.Items))
	for _, l := range c.Items {
		items = append(items, SaleItem{ProductID: l.Product.ID, QuantitySold: l.Quantity})
	}
	return items
}

// Refresh replaces product snapshots with fresher catalog entries. Lines whose product is
// missing from the catalog keep their old snapshot.
func (c Cart) Refresh(catalog []Product) Cart {
	byID := make(map[string]Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}
	out := c.clone()
	for i, l := range out.Items {
		if p, ok := byID[l.Product.ID]; ok {
			out.Items[i].Product = p
		}
	}
	return out
}
