package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sangkips/trademate-console/internal/application/poller"
	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/domain/enum"
	"github.com/sangkips/trademate-console/internal/domain/repository"
	infraRepo "github.com/sangkips/trademate-console/internal/infrastructure/repository"
	"github.com/sangkips/trademate-console/pkg/apperror"
	"github.com/sangkips/trademate-console/pkg/money"
	"github.com/sangkips/trademate-console/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) entity.Date {
	t.Helper()
	d, err := entity.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestReceiptDateAndTimeFormats(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)

	assert.Equal(t, "5-Mar-2024", FormatDate(at))
	assert.Equal(t, "2:07 PM", FormatTime(at))
}

func TestReceiptViewMarksReprintsAsCopy(t *testing.T) {
	r := testRenderer()
	rc := &entity.Receipt{
		ReceiptCode: "1042",
		PrintCount:  2,
		Products: []entity.ReceiptLine{
			{Product: entity.RefTo("rice", entity.Product{ID: "rice", Title: "Rice"}), Quantity: 2, PriceAtSale: money.FromMajor(500)},
		},
	}

	v := r.View(rc, entity.Shop{Name: "Corner Store", Phone: "0800"}, "Ada Obi", time.Now())

	assert.True(t, v.IsCopy)
	assert.Equal(t, "COPY", v.Watermark)
	assert.Equal(t, "₦1,000.00", v.Total)
	text := string(r.Text(v))
	assert.Contains(t, text, "*** COPY ***")
	assert.Contains(t, text, "Receipt No:")
	assert.Contains(t, text, "1042")
	assert.Contains(t, text, "1. Rice")
	assert.Contains(t, text, "Phone: 0800")
}

func TestReceiptViewFirstPrintHasNoWatermark(t *testing.T) {
	r := testRenderer()
	rc := &entity.Receipt{ReceiptCode: "7", PrintCount: 1, TotalAmount: money.FromMajor(50)}

	v := r.View(rc, entity.Shop{}, "", time.Now())

	assert.False(t, v.IsCopy)
	assert.Empty(t, v.Watermark)
	assert.Equal(t, "Shop", v.ShopName)
	assert.NotContains(t, string(r.Text(v)), "COPY")
}

func TestValidateProduct(t *testing.T) {
	valid := func() *repository.ProductInput {
		return &repository.ProductInput{
			Title:             " Rice ",
			Description:       "Long grain",
			UnitPrice:         money.FromMajor(500),
			Quantity:          10,
			CategoryID:        "c1",
			ManufacturingDate: "2024-01-01",
			ExpiryDate:        "2025-01-01",
		}
	}

	t.Run("valid input is trimmed", func(t *testing.T) {
		in := valid()
		require.NoError(t, ValidateProduct(in))
		assert.Equal(t, "Rice", in.Title)
	})

	t.Run("discount dropped when not discounted", func(t *testing.T) {
		in := valid()
		in.DiscountAmount = money.FromMajor(20)
		require.NoError(t, ValidateProduct(in))
		assert.Equal(t, money.Amount(0), in.DiscountAmount)
	})

	t.Run("expiry before manufacture", func(t *testing.T) {
		in := valid()
		in.ExpiryDate = "2023-12-31"
		err := ValidateProduct(in)
		require.Error(t, err)
		appErr := apperror.GetAppError(err)
		require.Len(t, appErr.Errors, 1)
		assert.Equal(t, "expiryDate", appErr.Errors[0].Field)
	})

	t.Run("discount above unit price", func(t *testing.T) {
		in := valid()
		in.IsDiscount = true
		in.DiscountAmount = money.FromMajor(600)
		err := ValidateProduct(in)
		require.Error(t, err)
		assert.Equal(t, "discountAmount", apperror.GetAppError(err).Errors[0].Field)
	})

	t.Run("missing fields", func(t *testing.T) {
		err := ValidateProduct(&repository.ProductInput{})
		require.Error(t, err)
		assert.GreaterOrEqual(t, len(apperror.GetAppError(err).Errors), 5)
	})
}

func TestListProductsFiltersExpiredAndSearches(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeProductRepo{products: []entity.Product{
		{ID: "1", Title: "Milk", ExpiryDate: mustDate(t, "2024-05-01")},
		{ID: "2", Title: "Bread", ExpiryDate: mustDate(t, "2024-07-01")},
		{ID: "3", Title: "Butter"},
	}}
	svc := NewProductService(repo, nil)
	svc.now = func() time.Time { return now }

	expired, err := svc.ListProducts(context.Background(), &ListProductsInput{Filter: ProductFilterExpired})
	require.NoError(t, err)
	require.Len(t, expired.Items, 1)
	assert.Equal(t, "Milk", expired.Items[0].Title)

	fresh, err := svc.ListProducts(context.Background(), &ListProductsInput{Filter: ProductFilterNonExpired})
	require.NoError(t, err)
	assert.Len(t, fresh.Items, 2)
	assert.Equal(t, "Bread", fresh.Items[0].Title)

	searched, err := svc.ListProducts(context.Background(), &ListProductsInput{Search: "bu"})
	require.NoError(t, err)
	require.Len(t, searched.Items, 1)
	assert.Equal(t, "Butter", searched.Items[0].Title)
}

func TestBuildOverview(t *testing.T) {
	now := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	var top []entity.TopProduct
	for i := 0; i < 9; i++ {
		top = append(top, entity.TopProduct{ID: string(rune('a' + i)), TotalSold: i})
	}
	data := DashboardData{
		Dashboard: entity.Dashboard{
			MonthlySummary: entity.MonthlySummary{TotalSales: money.FromMajor(5000), TotalTransactions: 12},
			SalesTrends: []entity.SalesTrend{
				{Date: mustDate(t, "2024-03-05"), TotalSales: money.FromMajor(1900)},
				{Date: mustDate(t, "2024-03-01"), TotalSales: money.FromMajor(100)},
				{Date: mustDate(t, "2024-02-28"), TotalSales: money.FromMajor(300)},
			},
			TopProducts: top,
		},
		Products: []entity.Product{
			{ID: "p1", ExpiryDate: mustDate(t, "2024-01-01")},
			{ID: "p2", ExpiryDate: mustDate(t, "2025-01-01")},
		},
	}

	o := BuildOverview(data, "2024-03-05", 1, now, now)

	assert.Equal(t, "2024-03-05", o.SelectedDate)
	assert.Equal(t, money.FromMajor(1900), o.DailySales)
	assert.Equal(t, 12, o.MonthlyTransactions)
	assert.Equal(t, 1, o.ExpiredCount)
	require.Len(t, o.Trends, 2)
	assert.Equal(t, "2024-03-01", o.Trends[0].Date.Day())
	require.Len(t, o.TopProducts.Items, 7)
	assert.Equal(t, 8, o.TopProducts.Items[0].TotalSold)
	assert.Equal(t, 2, o.TopProducts.Pagination.TotalPages)

	fallback := BuildOverview(data, "not-a-date", 1, now, now)
	assert.Equal(t, "2024-03-20", fallback.SelectedDate)
	assert.Equal(t, money.Amount(0), fallback.DailySales)
}

func TestValidateReceiptCode(t *testing.T) {
	code, err := ValidateReceiptCode(" 1042 ")
	require.NoError(t, err)
	assert.Equal(t, "1042", code)

	for _, bad := range []string{"", "12a", "12345678901"} {
		_, err := ValidateReceiptCode(bad)
		assert.Error(t, err, bad)
	}
}

func TestReceiptSearchResolvesDetailsAndToleratesMissingShop(t *testing.T) {
	sales := &fakeSaleRepo{search: &entity.Receipt{
		ReceiptCode: "1042",
		Cashier:     entity.Ref[entity.User]{ID: "u1"},
		PrintCount:  1,
		Products: []entity.ReceiptLine{
			{Product: entity.Ref[entity.Product]{ID: "rice"}, Quantity: 2, PriceAtSale: money.FromMajor(500)},
		},
	}}
	products := &fakeProductRepo{products: []entity.Product{{ID: "rice", Title: "Rice"}}}
	staff := &fakeStaffRepo{users: map[string]entity.User{
		"u1": {ID: "u1", FirstName: "Ada", LastName: "Obi", ParentShop: entity.Ref[entity.Shop]{ID: "missing"}},
	}}
	shops := &fakeShopRepo{shops: map[string]entity.Shop{}}
	fp := &fakePrinter{}
	svc := NewReceiptService(sales, products, staff, shops, NewPrinterService(fp, testRenderer(), "stdout"))

	details, err := svc.Search(context.Background(), "1042")

	require.NoError(t, err)
	assert.Equal(t, "Ada Obi", details.View.Cashier)
	assert.Equal(t, "Shop", details.View.ShopName)
	require.Len(t, details.View.Lines, 1)
	assert.Equal(t, "Rice", details.View.Lines[0].Title)
	assert.False(t, details.View.IsCopy)
}

func TestReceiptReprintPrintsCopy(t *testing.T) {
	sales := &fakeSaleRepo{search: &entity.Receipt{ReceiptCode: "1042", PrintCount: 1, TotalAmount: money.FromMajor(10)}}
	fp := &fakePrinter{}
	shops := &fakeShopRepo{shops: map[string]entity.Shop{}}
	svc := NewReceiptService(sales, &fakeProductRepo{}, &fakeStaffRepo{}, shops, NewPrinterService(fp, testRenderer(), "stdout"))

	details, err := svc.Reprint(context.Background(), "1042")

	require.NoError(t, err)
	assert.Equal(t, 1, sales.reprints)
	assert.True(t, details.View.IsCopy)
	require.Len(t, fp.jobs, 1)
	assert.True(t, strings.Contains(string(fp.jobs[0]), "COPY"))

	_, err = svc.Search(context.Background(), "9999")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestInviteCashierValidatesPasswords(t *testing.T) {
	repo := &fakeStaffRepo{}
	svc := NewStaffService(repo)
	input := &InviteCashierInput{
		InviteCashierInput: repository.InviteCashierInput{
			FirstName: "Ada", LastName: "Obi", Email: " ADA@example.com ",
			Password: "secret", Phone: "0800", GuarantorName: "Ike", GuarantorPhone: "0801",
		},
		ConfirmPassword: "other",
	}

	err := svc.InviteCashier(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, "confirmPassword", apperror.GetAppError(err).Errors[0].Field)

	input.ConfirmPassword = "secret"
	require.NoError(t, svc.InviteCashier(context.Background(), input))
	require.Len(t, repo.invited, 1)
	assert.Equal(t, "ada@example.com", repo.invited[0].Email)
}

func TestToggleBlock(t *testing.T) {
	repo := &fakeStaffRepo{users: map[string]entity.User{
		"c1": {ID: "c1", Role: enum.RoleCashier},
		"c2": {ID: "c2", Role: enum.RoleCashier, IsAccountDeactivated: true},
	}}
	svc := NewStaffService(repo)
	admin := entity.User{ID: "a1", Role: enum.RoleAdmin}

	blocked, err := svc.ToggleBlock(context.Background(), admin, "c1")
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = svc.ToggleBlock(context.Background(), admin, "c2")
	require.NoError(t, err)
	assert.False(t, blocked)

	_, err = svc.ToggleBlock(context.Background(), admin, "a1")
	assert.Error(t, err)
	assert.Equal(t, []string{"c1", "c2"}, repo.toggled)
}

func TestListStaffPutsAdminsFirst(t *testing.T) {
	repo := &fakeStaffRepo{users: map[string]entity.User{
		"c1": {ID: "c1", FirstName: "Zed", Role: enum.RoleCashier},
		"a1": {ID: "a1", FirstName: "Amy", Role: enum.RoleAdmin},
	}}
	svc := NewStaffService(repo)

	res, err := svc.ListStaff(context.Background(), &pagination.PaginationParams{Page: 1, PerPage: 10}, "")

	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "a1", res.Items[0].ID)

	res, err = svc.ListStaff(context.Background(), nil, "zed")
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
}

func TestLoginRejectsDeactivatedAccounts(t *testing.T) {
	repo := &fakeAuthRepo{result: &entity.AuthResult{Token: "tok", User: entity.User{IsAccountDeactivated: true}}}
	registry := poller.NewRegistry(poller.DefaultRegistryConfig(), nil)
	t.Cleanup(registry.Close)
	svc := NewAuthService(repo, infraRepo.NewMemoryTerminalRepository(), registry)

	_, err := svc.Login(context.Background(), "a@b.c", "pw")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestLogoutStopsPollersAndDropsCart(t *testing.T) {
	ctx := context.Background()
	repo := &fakeAuthRepo{logoutErr: apperror.ErrUnavailable}
	terminals := infraRepo.NewMemoryTerminalRepository()
	registry := poller.NewRegistry(poller.DefaultRegistryConfig(), nil)
	t.Cleanup(registry.Close)
	forgetter := &recordingForgetter{}
	svc := NewAuthService(repo, terminals, registry, forgetter)

	products := &fakeProductRepo{products: []entity.Product{{ID: "rice", Quantity: 3}}}
	catalog := NewCatalogService(products, terminals, registry, time.Hour)
	cred := Credentials{SessionID: "sess-9"}
	catalog.Watch(cred)
	require.True(t, registry.Running(poller.Key("sess-9", catalogFeed)))
	_, err := terminals.Update(ctx, "sess-9", func(tm *entity.Terminal) error {
		tm.Cart, _ = tm.Cart.Add(products.products[0])
		return nil
	})
	require.NoError(t, err)

	svc.Logout(ctx, "sess-9")

	assert.False(t, registry.Running(poller.Key("sess-9", catalogFeed)))
	assert.Equal(t, []string{"sess-9"}, forgetter.forgotten)
	tm, err := terminals.Get(ctx, "sess-9")
	require.NoError(t, err)
	assert.True(t, tm.Cart.IsEmpty())
}

func TestVerifyAccountRequiresSixDigits(t *testing.T) {
	repo := &fakeAuthRepo{}
	registry := poller.NewRegistry(poller.DefaultRegistryConfig(), nil)
	t.Cleanup(registry.Close)
	svc := NewAuthService(repo, infraRepo.NewMemoryTerminalRepository(), registry)

	assert.Error(t, svc.VerifyAccount(context.Background(), "12345"))
	assert.Error(t, svc.VerifyAccount(context.Background(), "12a456"))
	require.NoError(t, svc.VerifyAccount(context.Background(), " 123456 "))
	assert.Equal(t, []string{"123456"}, repo.verified)
}
