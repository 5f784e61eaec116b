package service

import (
	"context"
	"errors"
	"sync"

	"github.com/sangkips/trademate-console/internal/config"
	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/domain/repository"
	"github.com/sangkips/trademate-console/pkg/apperror"
	"github.com/sangkips/trademate-console/pkg/money"
)

type fakeProductRepo struct {
	mu       sync.Mutex
	products []entity.Product
	listErr  error
	created  []*repository.ProductInput
	lists    int
}

func (f *fakeProductRepo) List(ctx context.Context) ([]entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]entity.Product(nil), f.products...), nil
}

func (f *fakeProductRepo) GetByIDs(ctx context.Context, ids []string) ([]entity.Product, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []entity.Product
	for _, p := range f.products {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Create(ctx context.Context, input *repository.ProductInput) error {
	f.created = append(f.created, input)
	return nil
}

func (f *fakeProductRepo) Update(ctx context.Context, id string, input *repository.ProductInput) error {
	return nil
}

func (f *fakeProductRepo) Delete(ctx context.Context, id string) error {
	return nil
}

// fakeSaleRepo serves canned receipts. onPreview and onCommit run inside the
// backend call, before it returns.
type fakeSaleRepo struct {
	mu        sync.Mutex
	preview   *entity.Receipt
	search    *entity.Receipt
	commitErr error
	commits   int
	reprints  int
	previews  int
	sent      [][]entity.SaleItem
	onPreview func()
	onCommit  func()
}

func (f *fakeSaleRepo) Preview(ctx context.Context, items []entity.SaleItem) (*entity.Receipt, error) {
	f.mu.Lock()
	f.previews++
	f.sent = append(f.sent, items)
	hook := f.onPreview
	r := *f.preview
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return &r, nil
}

func (f *fakeSaleRepo) Commit(ctx context.Context, receiptID string) (*entity.Receipt, error) {
	f.mu.Lock()
	f.commits++
	hook, err := f.onCommit, f.commitErr
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return nil, nil
}

func (f *fakeSaleRepo) commitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commits
}

func (f *fakeSaleRepo) Reprint(ctx context.Context, receiptCode string) (*entity.Receipt, error) {
	f.reprints++
	if f.search != nil {
		f.search.PrintCount++
	}
	return nil, nil
}

func (f *fakeSaleRepo) Search(ctx context.Context, receiptCode string) (*entity.Receipt, error) {
	if f.search == nil || string(f.search.ReceiptCode) != receiptCode {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	r := *f.search
	r.Products = append([]entity.ReceiptLine(nil), f.search.Products...)
	return &r, nil
}

type fakeStaffRepo struct {
	users   map[string]entity.User
	toggled []string
	invited []*repository.InviteCashierInput
}

func (f *fakeStaffRepo) List(ctx context.Context) ([]entity.User, error) {
	var out []entity.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeStaffRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError("User")
	}
	return &u, nil
}

func (f *fakeStaffRepo) InviteCashier(ctx context.Context, input *repository.InviteCashierInput) error {
	f.invited = append(f.invited, input)
	return nil
}

func (f *fakeStaffRepo) AssignCashier(ctx context.Context, cashierID, shopID string) error {
	return nil
}

func (f *fakeStaffRepo) ToggleDeactivation(ctx context.Context, userID string) error {
	f.toggled = append(f.toggled, userID)
	return nil
}

type fakeShopRepo struct {
	shops map[string]entity.Shop
}

func (f *fakeShopRepo) GetByID(ctx context.Context, id string) (*entity.Shop, error) {
	s, ok := f.shops[id]
	if !ok {
		return nil, errors.New("shop lookup failed")
	}
	return &s, nil
}

// fakePrinter records jobs and fails while failing is set.
type fakePrinter struct {
	mu      sync.Mutex
	jobs    [][]byte
	failing bool
}

func (p *fakePrinter) Print(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failing {
		return errors.New("printer offline")
	}
	p.jobs = append(p.jobs, data)
	return nil
}

func (p *fakePrinter) Close() error      { return nil }
func (p *fakePrinter) IsConnected() bool { return !p.failing }

func testRenderer() *ReceiptRenderer {
	return NewReceiptRenderer(money.MustFormatter("NGN", "en", "₦"), config.ReceiptConfig{
		Footer: "Thanks for coming. We'll love to serve you again.",
		Notice: "No refund after payment",
	}, 48)
}

type fakeDashboardRepo struct {
	dashboard entity.Dashboard
}

func (f *fakeDashboardRepo) Get(ctx context.Context) (*entity.Dashboard, error) {
	d := f.dashboard
	return &d, nil
}

type fakeAuthRepo struct {
	result    *entity.AuthResult
	loginErr  error
	logoutErr error
	verified  []string
}

func (f *fakeAuthRepo) Login(ctx context.Context, email, password string) (*entity.AuthResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.result, nil
}

func (f *fakeAuthRepo) Logout(ctx context.Context) error {
	return f.logoutErr
}

func (f *fakeAuthRepo) RegisterShop(ctx context.Context, input *repository.RegisterShopInput) error {
	return nil
}

func (f *fakeAuthRepo) VerifyAccount(ctx context.Context, code string) error {
	f.verified = append(f.verified, code)
	return nil
}

type recordingForgetter struct {
	forgotten []string
}

func (r *recordingForgetter) Forget(sessionID string) {
	r.forgotten = append(r.forgotten, sessionID)
}
