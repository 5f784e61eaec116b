package service

import (
	"context"
	"time"

	"github.com/sangkips/trademate-console/internal/application/poller"
	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/domain/repository"
	"github.com/sangkips/trademate-console/internal/logging"
	"github.com/sangkips/trademate-console/pkg/apperror"
)

const catalogFeed = "catalog"

// CatalogService keeps each cashier's product list fresh while the store page is open.
type CatalogService struct {
	productRepo  repository.ProductRepository
	terminalRepo repository.TerminalRepository
	registry     *poller.Registry
	snapshots    *poller.Snapshots[[]entity.Product]
	interval     time.Duration
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	productRepo repository.ProductRepository,
	terminalRepo repository.TerminalRepository,
	registry *poller.Registry,
	interval time.Duration,
) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		terminalRepo: terminalRepo,
		registry:     registry,
		snapshots:    poller.NewSnapshots[[]entity.Product](),
		interval:     interval,
	}
}

// Products returns the latest polled catalog, fetching in the foreground when there is none yet.
func (s *CatalogService) Products(ctx context.Context, cred Credentials) ([]entity.Product, error) {
	if snap, ok := s.snapshots.Get(poller.Key(cred.SessionID, catalogFeed)); ok {
		return snap.Value, nil
	}
	return s.Refresh(ctx, cred)
}

// Product finds one product in the session's catalog.
func (s *CatalogService) Product(ctx context.Context, cred Credentials, id string) (*entity.Product, error) {
	products, err := s.Products(ctx, cred)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, apperror.NewNotFoundError("Product")
}

// Refresh fetches the catalog, stores it, and re-snapshots the session's cart lines.
func (s *CatalogService) Refresh(ctx context.Context, cred Credentials) ([]entity.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.snapshots.Put(poller.Key(cred.SessionID, catalogFeed), products)

	_, err = s.terminalRepo.Update(ctx, cred.SessionID, func(t *entity.Terminal) error {
		if !t.Cart.IsEmpty() {
			t.Cart = t.Cart.Refresh(products)
		}
		return nil
	})
	if err != nil {
		logging.FromContext(ctx).Warn("failed to refresh cart snapshot", "error", err)
	}
	return products, nil
}

// Watch starts the session's catalog poller if it is not running.
func (s *CatalogService) Watch(cred Credentials) {
	s.registry.Ensure(poller.Key(cred.SessionID, catalogFeed), s.interval, func(ctx context.Context) error {
		_, err := s.Refresh(cred.Bind(ctx), cred)
		return err
	})
}

// Forget drops the session's cached catalog.
func (s *CatalogService) Forget(sessionID string) {
	s.snapshots.Delete(poller.Key(sessionID, catalogFeed))
}
