package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/domain/repository"
)

type saleRepository struct {
	c *Client
}

// NewSaleRepository creates the backend-backed sale repository
func NewSaleRepository(c *Client) repository.SaleRepository {
	return &saleRepository{c: c}
}

type receiptEnvelope struct {
	Receipt *entity.Receipt `json:"receipt"`
	Message string          `json:"message"`
}

func (e receiptEnvelope) receipt(method, path string) (*entity.Receipt, error) {
	if e.Receipt == nil {
		msg := e.Message
		if msg == "" {
			msg = "Receipt not found"
		}
		return nil, &Error{Method: method, Path: path, Status: http.StatusNotFound, Message: msg}
	}
	return e.Receipt, nil
}

func (r *saleRepository) Preview(ctx context.Context, items []entity.SaleItem) (*entity.Receipt, error) {
	in := map[string][]entity.SaleItem{"products": items}
	var out receiptEnvelope
	if err := r.c.sendJSON(ctx, http.MethodPost, "/preview", in, &out); err != nil {
		return nil, err
	}
	return out.receipt(http.MethodPost, "/preview")
}

func (r *saleRepository) Commit(ctx context.Context, receiptID string) (*entity.Receipt, error) {
	var out receiptEnvelope
	if err := r.c.sendJSON(ctx, http.MethodPost, "/sell-receipt", map[string]string{"receiptId": receiptID}, &out); err != nil {
		return nil, err
	}
	// Some deployments answer the commit with only a message.
	return out.Receipt, nil
}

func (r *saleRepository) Reprint(ctx context.Context, receiptCode string) (*entity.Receipt, error) {
	var out receiptEnvelope
	if err := r.c.sendJSON(ctx, http.MethodPost, "/reprint", map[string]string{"receiptCode": receiptCode}, &out); err != nil {
		return nil, err
	}
	return out.Receipt, nil
}

func (r *saleRepository) Search(ctx context.Context, receiptCode string) (*entity.Receipt, error) {
	var out receiptEnvelope
	if err := r.c.get(ctx, "/receipts/search", url.Values{"receiptCode": {receiptCode}}, &out); err != nil {
		return nil, err
	}
	return out.receipt(http.MethodGet, "/receipts/search")
}

type dashboardRepository struct {
	c *Client
}

// NewDashboardRepository creates the backend-backed analytics reader
func NewDashboardRepository(c *Client) repository.DashboardRepository {
	return &dashboardRepository{c: c}
}

func (r *dashboardRepository) Get(ctx context.Context) (*entity.Dashboard, error) {
	var out entity.Dashboard
	if err := r.c.get(ctx, "/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
