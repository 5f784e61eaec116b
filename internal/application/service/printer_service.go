package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/pkg/money"
	"github.com/sangkips/trademate-console/pkg/printer"
)

// PrinterService sends formatted receipts to the configured printer.
type PrinterService struct {
	printer     printer.Printer
	renderer    *ReceiptRenderer
	printerType string
}

// NewPrinterService creates a new printer service.
func NewPrinterService(p printer.Printer, renderer *ReceiptRenderer, printerType string) *PrinterService {
	return &PrinterService{
		printer:     p,
		renderer:    renderer,
		printerType: printerType,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
	}
}

// Renderer exposes the receipt formatter used for the HTML view.
func (s *PrinterService) Renderer() *ReceiptRenderer {
	return s.renderer
}

// Print lays out and prints a receipt view.
func (s *PrinterService) Print(v ReceiptView) error {
	if err := s.printer.Print(s.renderer.Text(v)); err != nil {
		slog.Error("printer error", "receipt", v.ReceiptCode, "error", err)
		return fmt.Errorf("failed to print receipt: %w", err)
	}
	return nil
}

// TestPrint sends a sample receipt to the printer and returns its view.
func (s *PrinterService) TestPrint(now time.Time) (ReceiptView, error) {
	rc := &entity.Receipt{
		ReceiptCode: "0000",
		Products: []entity.ReceiptLine{
			{Product: entity.RefTo("t1", entity.Product{ID: "t1", Title: "Test Item 1"}), Quantity: 1, PriceAtSale: money.FromMajor(10)},
			{Product: entity.RefTo("t2", entity.Product{ID: "t2", Title: "Test Item 2"}), Quantity: 2, PriceAtSale: money.FromMajor(5)},
		},
	}
	v := s.renderer.View(rc, entity.Shop{Name: "PRINTER TEST"}, "System", now)
	return v, s.Print(v)
}
