package entity

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/sangkips/trademate-console/internal/domain/enum"
	"github.com/sangkips/trademate-console/pkg/money"
)

// Product is an inventory item as the backend returns it
type Product struct {
	ID                string        `json:"_id"`
	Title             string        `json:"title"`
	Description       string        `json:"description"`
	UnitPrice         money.Amount  `json:"unitPrice"`
	BulkPrice         money.Amount  `json:"bulkPrice"`
	Quantity          int           `json:"quantity"`
	Sizes             Sizes         `json:"sizes,omitempty"`
	IsTrending        bool          `json:"isTrending"`
	IsDiscount        bool          `json:"isDiscount"`
	DiscountAmount    money.Amount  `json:"discountAmount"`
	ManufacturingDate Date          `json:"manufacturingDate"`
	ExpiryDate        Date          `json:"expiryDate"`
	Category          Ref[Category] `json:"category"`
	Image             string        `json:"image,omitempty"`
}

func (p Product) RefID() string {
	return p.ID
}

// EffectivePrice is the selling price after the product's discount, never below zero.
func (p Product) EffectivePrice() money.Amount {
	if !p.IsDiscount {
		return p.UnitPrice
	}
	price := p.UnitPrice - p.DiscountAmount
	if price < 0 {
		return 0
	}
	return price
}

// StockLevel classifies the remaining quantity.
func (p Product) StockLevel() enum.StockLevel {
	return enum.ClassifyStock(p.Quantity)
}

// IsOutOfStock reports whether the product can no longer be added to a cart.
func (p Product) IsOutOfStock() bool {
	return p.StockLevel() == enum.StockLevelOutOfStock
}

// IsExpired reports whether the expiry date is before now. Products without an expiry date never expire.
func (p Product) IsExpired(now time.Time) bool {
	return !p.ExpiryDate.IsZero() && p.ExpiryDate.Before(now)
}

// CategoryName returns the embedded category's name, or "" when only the id is known.
func (p Product) CategoryName() string {
	if p.Category.Value != nil {
		return p.Category.Value.Name
	}
	return ""
}

// Category groups products within a shop
type Category struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Shop        string `json:"shop,omitempty"`
}

func (c Category) RefID() string {
	return c.ID
}

// Sizes accepts either a JSON array or a comma-separated string.
type Sizes []string

func (s Sizes) String() string {
	return strings.Join(s, ", ")
}

func (s *Sizes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*s = list
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = ParseSizes(str)
	return nil
}

// ParseSizes splits a comma-separated size list, dropping blanks.
func ParseSizes(str string) Sizes {
	var out Sizes
	for _, part := range strings.Split(str, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
