package repository

import (
	"context"

	"github.com/sangkips/trademate-console/internal/domain/entity"
)

// SaleRepository defines the two-phase sale protocol and receipt lookups
type SaleRepository interface {
	// Preview asks the backend for a provisional receipt without decrementing stock
	Preview(ctx context.Context, items []entity.SaleItem) (*entity.Receipt, error)
	// Commit finalizes a previewed receipt
	Commit(ctx context.Context, receiptID string) (*entity.Receipt, error)
	// Reprint increments the receipt's print count
	Reprint(ctx context.Context, receiptCode string) (*entity.Receipt, error)
	Search(ctx context.Context, receiptCode string) (*entity.Receipt, error)
}

// DashboardRepository reads the analytics payload
type DashboardRepository interface {
	Get(ctx context.Context) (*entity.Dashboard, error)
}
