package service

import (
	"strconv"
	"time"

	"github.com/sangkips/trademate-console/internal/config"
	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/pkg/money"
	"github.com/sangkips/trademate-console/pkg/printer"
)

const (
	receiptDateLayout = "2-Jan-2006"
	receiptTimeLayout = "3:04 PM"
	copyWatermark     = "COPY"
)

// ReceiptLineView is one formatted receipt row.
type ReceiptLineView struct {
	Index     int
	Title     string
	Quantity  int
	UnitPrice string
	LinePrice string
}

// ReceiptView is a receipt with every value already formatted for display or printing.
type ReceiptView struct {
	ShopName      string
	ShopAddress   string
	ShopPhone     string
	ShopEmail     string
	Date          string
	Time          string
	Cashier       string
	ReceiptCode   string
	Lines         []ReceiptLineView
	Total         string
	DiscountTotal string
	VAT           string
	HasDiscount   bool
	HasVAT        bool
	IsCopy        bool
	Watermark     string
	Footer        string
	Notice        string
}

// ReceiptRenderer formats receipts for the HTML modal and the printer.
type ReceiptRenderer struct {
	money    *money.Formatter
	footer   string
	notice   string
	width    int
	location *time.Location
}

// NewReceiptRenderer creates a renderer. width is the printer's character width.
func NewReceiptRenderer(f *money.Formatter, cfg config.ReceiptConfig, width int) *ReceiptRenderer {
	if width <= 0 {
		width = printer.DefaultWidth
	}
	return &ReceiptRenderer{
		money:    f,
		footer:   cfg.Footer,
		notice:   cfg.Notice,
		width:    width,
		location: time.Local,
	}
}

// Money formats an amount with the configured currency.
func (r *ReceiptRenderer) Money(a money.Amount) string {
	return r.money.Format(a)
}

// FormatDate renders a date as e.g. "5-Mar-2024".
func FormatDate(t time.Time) string {
	return t.Format(receiptDateLayout)
}

// FormatTime renders a time as e.g. "2:07 PM".
func FormatTime(t time.Time) string {
	return t.Format(receiptTimeLayout)
}

// View formats rc. The sale time is rc.SoldAt when set, otherwise now.
func (r *ReceiptRenderer) View(rc *entity.Receipt, shop entity.Shop, cashier string, now time.Time) ReceiptView {
	at := now
	if !rc.SoldAt.IsZero() {
		at = rc.SoldAt.Time
	}
	at = at.In(r.location)

	v := ReceiptView{
		ShopName:    shop.Name,
		ShopAddress: shop.Address,
		ShopPhone:   shop.Phone,
		ShopEmail:   shop.Email,
		Date:        FormatDate(at),
		Time:        FormatTime(at),
		Cashier:     cashier,
		ReceiptCode: string(rc.ReceiptCode),
		Total:       r.Money(rc.Total()),
		HasDiscount: rc.DiscountTotal > 0,
		HasVAT:      rc.VATAmount > 0,
		IsCopy:      rc.IsCopy(),
		Footer:      r.footer,
		Notice:      r.notice,
	}
	if v.ShopName == "" {
		v.ShopName = "Shop"
	}
	if v.HasDiscount {
		v.DiscountTotal = r.Money(rc.DiscountTotal)
	}
	if v.HasVAT {
		v.VAT = r.Money(rc.VATAmount)
	}
	if v.IsCopy {
		v.Watermark = copyWatermark
	}
	for i, line := range rc.Products {
		v.Lines = append(v.Lines, ReceiptLineView{
			Index:     i + 1,
			Title:     line.Title(),
			Quantity:  line.Quantity,
			UnitPrice: r.money.Plain(line.PriceAtSale),
			LinePrice: r.Money(line.Total()),
		})
	}
	return v
}

var receiptColumns = []float64{0.42, 0.1, 0.2, 0.28}

// Text lays the view out as a fixed-width document for the printer.
func (r *ReceiptRenderer) Text(v ReceiptView) []byte {
	doc := printer.NewDocument(r.width)

	if v.IsCopy {
		doc.SetAlign(printer.AlignCenter).Text("*** " + v.Watermark + " ***")
	}

	doc.SetAlign(printer.AlignCenter).Text(v.ShopName)
	if v.ShopAddress != "" {
		doc.Text("Address: " + v.ShopAddress)
	}
	if v.ShopPhone != "" {
		doc.Text("Phone: " + v.ShopPhone)
	}
	if v.ShopEmail != "" {
		doc.Text("Email: " + v.ShopEmail)
	}

	doc.SetAlign(printer.AlignLeft).
		LineFeed().
		KeyValue(v.Date, v.Time).
		KeyValue("Cashier:", v.Cashier).
		KeyValue("Receipt No:", v.ReceiptCode).
		Separator('*').
		Row(receiptColumns, "Description", "Qty", "Unit Price", "Price")

	for _, line := range v.Lines {
		doc.Row(receiptColumns, strconv.Itoa(line.Index)+". "+line.Title, strconv.Itoa(line.Quantity), line.UnitPrice, line.LinePrice)
	}

	doc.Separator('*')
	if v.HasDiscount {
		doc.KeyValue("Discount:", v.DiscountTotal)
	}
	if v.HasVAT {
		doc.KeyValue("VAT:", v.VAT)
	}
	doc.KeyValue("Total Amount:", v.Total).
		Separator('*')

	if v.Footer != "" {
		doc.Text(v.Footer)
	}
	if v.Notice != "" {
		doc.SetAlign(printer.AlignRight).Text(v.Notice)
	}
	doc.SetAlign(printer.AlignLeft).LineFeed()

	return doc.Bytes()
}
