package service

import (
	"context"
	"time"

	"github.com/sangkips/trademate-console/internal/application/poller"
	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/domain/repository"
	"github.com/sangkips/trademate-console/pkg/money"
	"github.com/sangkips/trademate-console/pkg/pagination"
)

const (
	dashboardFeed       = "dashboard"
	topProductsPageSize = 7
)

// DashboardData is one poll of the analytics feed.
type DashboardData struct {
	Dashboard entity.Dashboard
	Products  []entity.Product
}

// DashboardOverview is what the dashboard page renders.
type DashboardOverview struct {
	SelectedDate        string
	MonthlySales        money.Amount
	MonthlyTransactions int
	ExpiredCount        int
	DailySales          money.Amount
	Trends              []entity.SalesTrend
	TopProducts         *pagination.PaginatedResult[entity.TopProduct]
	CashierSales        []entity.CashierSales
	FetchedAt           time.Time
}

// DashboardService serves the admin dashboard and keeps it fresh by polling.
type DashboardService struct {
	dashboardRepo repository.DashboardRepository
	productRepo   repository.ProductRepository
	registry      *poller.Registry
	snapshots     *poller.Snapshots[DashboardData]
	interval      time.Duration
	now           func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	dashboardRepo repository.DashboardRepository,
	productRepo repository.ProductRepository,
	registry *poller.Registry,
	interval time.Duration,
) *DashboardService {
	return &DashboardService{
		dashboardRepo: dashboardRepo,
		productRepo:   productRepo,
		registry:      registry,
		snapshots:     poller.NewSnapshots[DashboardData](),
		interval:      interval,
		now:           time.Now,
	}
}

// Refresh fetches the dashboard and product list and stores them.
func (s *DashboardService) Refresh(ctx context.Context, cred Credentials) (DashboardData, error) {
	d, err := s.dashboardRepo.Get(ctx)
	if err != nil {
		return DashboardData{}, err
	}
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return DashboardData{}, err
	}
	data := DashboardData{Dashboard: *d, Products: products}
	s.snapshots.Put(poller.Key(cred.SessionID, dashboardFeed), data)
	return data, nil
}

// Watch starts the session's dashboard poller if it is not running.
func (s *DashboardService) Watch(cred Credentials) {
	s.registry.Ensure(poller.Key(cred.SessionID, dashboardFeed), s.interval, func(ctx context.Context) error {
		_, err := s.Refresh(cred.Bind(ctx), cred)
		return err
	})
}

// Forget drops the session's cached dashboard.
func (s *DashboardService) Forget(sessionID string) {
	s.snapshots.Delete(poller.Key(sessionID, dashboardFeed))
}

// Overview builds the page for a selected day (YYYY-MM-DD, default today) and top-products page.
func (s *DashboardService) Overview(ctx context.Context, cred Credentials, day string, page int) (*DashboardOverview, error) {
	var (
		data      DashboardData
		fetchedAt time.Time
	)
	if snap, ok := s.snapshots.Get(poller.Key(cred.SessionID, dashboardFeed)); ok {
		data, fetchedAt = snap.Value, snap.FetchedAt
	} else {
		var err error
		if data, err = s.Refresh(ctx, cred); err != nil {
			return nil, err
		}
		fetchedAt = s.now()
	}
	return BuildOverview(data, day, page, s.now(), fetchedAt), nil
}

// BuildOverview derives the dashboard figures from one poll.
func BuildOverview(data DashboardData, day string, page int, now, fetchedAt time.Time) *DashboardOverview {
	if _, err := time.Parse(entity.DateLayout, day); err != nil {
		day = now.Format(entity.DateLayout)
	}

	expired := 0
	for _, p := range data.Products {
		if p.IsExpired(now) {
			expired++
		}
	}

	d := data.Dashboard
	return &DashboardOverview{
		SelectedDate:        day,
		MonthlySales:        d.MonthlySummary.TotalSales,
		MonthlyTransactions: d.MonthlySummary.TotalTransactions,
		ExpiredCount:        expired,
		DailySales:          d.SalesOn(day),
		Trends:              d.TrendsForMonth(day),
		TopProducts: pagination.Paginate(d.RankedProducts(), &pagination.PaginationParams{
			Page:    page,
			PerPage: topProductsPageSize,
		}),
		CashierSales: d.CashierSales,
		FetchedAt:    fetchedAt,
	}
}
