package entity

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/sangkips/trademate-console/pkg/money"
)

// ReceiptCode is the numeric code printed on a receipt. The backend sends it as a number or a string.
type ReceiptCode string

func (c *ReceiptCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = ReceiptCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*c = ReceiptCode(strconv.FormatInt(i, 10))
		return nil
	}
	*c = ReceiptCode(n.String())
	return nil
}

// ReceiptLine is one sold product on a receipt
type ReceiptLine struct {
	Product     Ref[Product] `json:"product"`
	Quantity    int          `json:"quantity"`
	PriceAtSale money.Amount `json:"priceAtSale"`
	Discount    money.Amount `json:"discount"`
}

// Title returns the product title when the product is embedded, otherwise its id.
func (l ReceiptLine) Title() string {
	if l.Product.Value != nil && l.Product.Value.Title != "" {
		return l.Product.Value.Title
	}
	return l.Product.ID
}

// Total is the line price: priceAtSale × quantity.
func (l ReceiptLine) Total() money.Amount {
	return l.PriceAtSale.Times(l.Quantity)
}

// Receipt is a sale record. A preview receipt carries an id and code but is not yet committed.
type Receipt struct {
	ID            string        `json:"_id"`
	ReceiptCode   ReceiptCode   `json:"receiptCode"`
	Cashier       Ref[User]     `json:"cashier"`
	Shop          Ref[Shop]     `json:"shop"`
	Products      []ReceiptLine `json:"products"`
	TotalAmount   money.Amount  `json:"totalAmount"`
	DiscountTotal money.Amount  `json:"discountTotal"`
	VATAmount     money.Amount  `json:"vatAmount"`
	PrintCount    int           `json:"printCount"`
	SoldAt        Date          `json:"soldAt"`
}

func (r Receipt) RefID() string {
	return r.ID
}

// IsCopy reports whether the receipt has been printed before and must carry the COPY watermark.
func (r Receipt) IsCopy() bool {
	return r.PrintCount > 1
}

// ProductIDs lists the ids of all lines, in order, without duplicates.
func (r Receipt) ProductIDs() []string {
	seen := make(map[string]bool, len(r.Products))
	ids := make([]string, 0, len(r.Products))
	for _, line := range r.Products {
		if line.Product.ID == "" || seen[line.Product.ID] {
			continue
		}
		seen[line.Product.ID] = true
		ids = append(ids, line.Product.ID)
	}
	return ids
}

// ItemsTotal sums the line totals; used when the backend omits totalAmount.
func (r Receipt) ItemsTotal() money.Amount {
	var total money.Amount
	for _, line := range r.Products {
		total += line.Total()
	}
	return total
}

// Total returns totalAmount, falling back to the sum of lines.
func (r Receipt) Total() money.Amount {
	if r.TotalAmount != 0 {
		return r.TotalAmount
	}
	return r.ItemsTotal()
}
