package service

import (
	"context"
	"errors"
	"time"

	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/domain/enum"
	"github.com/sangkips/trademate-console/internal/domain/repository"
	"github.com/sangkips/trademate-console/internal/logging"
	"github.com/sangkips/trademate-console/pkg/apperror"
)

var (
	ErrCartEmpty      = apperror.NewBadRequestError("Cart is empty")
	ErrOutOfStock     = apperror.NewBadRequestError("This product is out of stock")
	ErrNothingToPrint = apperror.NewConflictError("Check out before printing a receipt")
	ErrCheckoutOpen   = apperror.NewConflictError("Close the receipt before changing the cart")
	ErrCheckoutBusy   = apperror.NewConflictError("The sale is still being processed, please wait")
)

// inFlightTimeout is how long a preview or commit may hold the terminal before a
// later request may take it over.
const inFlightTimeout = 2 * time.Minute

// CheckoutService runs the cashier's cart and the preview, commit, print sequence.
type CheckoutService struct {
	terminalRepo repository.TerminalRepository
	saleRepo     repository.SaleRepository
	catalog      *CatalogService
	printer      *PrinterService
	now          func() time.Time
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	terminalRepo repository.TerminalRepository,
	saleRepo repository.SaleRepository,
	catalog *CatalogService,
	printer *PrinterService,
) *CheckoutService {
	return &CheckoutService{
		terminalRepo: terminalRepo,
		saleRepo:     saleRepo,
		catalog:      catalog,
		printer:      printer,
		now:          time.Now,
	}
}

// Terminal returns the session's current cart and checkout state.
func (s *CheckoutService) Terminal(ctx context.Context, sessionID string) (*entity.Terminal, error) {
	return s.terminalRepo.Get(ctx, sessionID)
}

// editCart applies a cart reducer while no receipt is open.
func (s *CheckoutService) editCart(ctx context.Context, sessionID string, fn func(entity.Cart) (entity.Cart, error)) (*entity.Terminal, error) {
	return s.terminalRepo.Update(ctx, sessionID, func(t *entity.Terminal) error {
		if busy(t) {
			return ErrCheckoutBusy
		}
		if t.ModalOpen() {
			return ErrCheckoutOpen
		}
		// a preview that never returned committed nothing
		t.State = enum.CheckoutStateIdle
		cart, err := fn(t.Cart)
		if err != nil {
			return err
		}
		t.Cart = cart
		t.LastError = ""
		return nil
	})
}

// AddToCart adds one unit of a catalog product.
func (s *CheckoutService) AddToCart(ctx context.Context, cred Credentials, productID string) (*entity.Terminal, error) {
	p, err := s.catalog.Product(ctx, cred, productID)
	if err != nil {
		return nil, err
	}
	return s.editCart(ctx, cred.SessionID, func(c entity.Cart) (entity.Cart, error) {
		out, err := c.Add(*p)
		if errors.Is(err, entity.ErrOutOfStock) {
			return c, ErrOutOfStock
		}
		return out, err
	})
}

func (s *CheckoutService) Increment(ctx context.Context, sessionID, productID string) (*entity.Terminal, error) {
	return s.editCart(ctx, sessionID, func(c entity.Cart) (entity.Cart, error) {
		return c.Increment(productID), nil
	})
}

func (s *CheckoutService) Decrement(ctx context.Context, sessionID, productID string) (*entity.Terminal, error) {
	return s.editCart(ctx, sessionID, func(c entity.Cart) (entity.Cart, error) {
		return c.Decrement(productID), nil
	})
}

func (s *CheckoutService) Remove(ctx context.Context, sessionID, productID string) (*entity.Terminal, error) {
	return s.editCart(ctx, sessionID, func(c entity.Cart) (entity.Cart, error) {
		return c.Remove(productID), nil
	})
}

func (s *CheckoutService) Clear(ctx context.Context, sessionID string) (*entity.Terminal, error) {
	return s.editCart(ctx, sessionID, func(c entity.Cart) (entity.Cart, error) {
		return c.Clear(), nil
	})
}

// Checkout asks the backend for a provisional receipt and opens the receipt modal.
// Stock is not touched until Print commits the sale. The terminal is held in the
// previewing state during the call so the cart cannot change under the preview.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID string) (*entity.Terminal, error) {
	var (
		claimed bool
		cart    entity.Cart
	)
	t, err := s.terminalRepo.Update(ctx, sessionID, func(t *entity.Terminal) error {
		claimed = false
		switch {
		case busy(t):
			return ErrCheckoutBusy
		case t.ModalOpen():
			// already previewed, or a committed sale still waits to be printed
			return nil
		case t.Cart.IsEmpty():
			return ErrCartEmpty
		}
		t.State = enum.CheckoutStatePreviewing
		t.Preview = nil
		t.LastError = ""
		cart = t.Cart
		claimed = true
		return nil
	})
	if err != nil || !claimed {
		return t, err
	}

	preview, err := s.saleRepo.Preview(ctx, cart.Payload())
	if err != nil {
		return s.recordFailure(ctx, sessionID, err, enum.CheckoutStatePreviewing, enum.CheckoutStateIdle), err
	}
	fillFromCart(preview, cart)

	return s.terminalRepo.Update(ctx, sessionID, func(t *entity.Terminal) error {
		if t.State != enum.CheckoutStatePreviewing {
			return ErrCheckoutBusy
		}
		t.State = enum.CheckoutStatePreviewed
		t.Preview = preview
		t.LastError = ""
		return nil
	})
}

// Print commits the previewed sale, prints the receipt, and on success empties the cart.
// A failed commit leaves the cart and preview untouched. A failed print after a
// successful commit leaves the terminal committed so a retry only re-prints.
// Only one request may commit a given preview.
func (s *CheckoutService) Print(ctx context.Context, cred Credentials, cashier entity.User) (*entity.Terminal, *ReceiptView, error) {
	sessionID := cred.SessionID
	var commit bool
	t, err := s.terminalRepo.Update(ctx, sessionID, func(t *entity.Terminal) error {
		commit = false
		switch {
		case busy(t):
			return ErrCheckoutBusy
		case t.Preview == nil || !t.ModalOpen():
			return ErrNothingToPrint
		case t.State == enum.CheckoutStateCommitted:
			return nil
		}
		// previewed, or a commit whose request never came back
		t.State = enum.CheckoutStateCommitting
		t.LastError = ""
		commit = true
		return nil
	})
	if err != nil {
		return t, nil, err
	}

	if commit {
		committed, err := s.saleRepo.Commit(ctx, t.Preview.ID)
		if err != nil {
			logging.FromContext(ctx).Warn("sale commit failed", "receipt_id", t.Preview.ID, "error", err)
			return s.recordFailure(ctx, sessionID, err, enum.CheckoutStateCommitting, enum.CheckoutStatePreviewed), nil, err
		}
		receipt := t.Preview
		if committed != nil {
			fillFromCart(committed, t.Cart)
			receipt = committed
		}
		t, err = s.terminalRepo.Update(ctx, sessionID, func(t *entity.Terminal) error {
			t.State = enum.CheckoutStateCommitted
			t.Preview = receipt
			t.LastError = ""
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
		logging.FromContext(ctx).Info("sale committed", "receipt_code", receipt.ReceiptCode, "total", receipt.Total().Major())
	}

	view := s.printer.Renderer().View(t.Preview, entity.ShopOf(cashier), cashier.FullName(), s.now())
	if err := s.printer.Print(view); err != nil {
		return s.recordFailure(ctx, sessionID, err, enum.CheckoutStateCommitted, enum.CheckoutStateCommitted), &view, err
	}

	t, err = s.terminalRepo.Update(ctx, sessionID, func(t *entity.Terminal) error {
		t.Complete()
		return nil
	})
	if err != nil {
		return nil, &view, err
	}

	// stock changed; reload so the store page shows new quantities
	if _, err := s.catalog.Refresh(ctx, cred); err != nil {
		logging.FromContext(ctx).Warn("catalog refresh after sale failed", "error", err)
	}
	return t, &view, nil
}

// Cancel closes the receipt modal and keeps the cart. A committed sale is kept
// as sold; closing only skips printing.
func (s *CheckoutService) Cancel(ctx context.Context, sessionID string) (*entity.Terminal, error) {
	return s.terminalRepo.Update(ctx, sessionID, func(t *entity.Terminal) error {
		if busy(t) {
			return ErrCheckoutBusy
		}
		if t.State == enum.CheckoutStateCommitted {
			t.Complete()
			return nil
		}
		t.CloseModal()
		return nil
	})
}

// Receipt renders the open preview for the modal.
func (s *CheckoutService) Receipt(t *entity.Terminal, cashier entity.User) *ReceiptView {
	if t.Preview == nil {
		return nil
	}
	v := s.printer.Renderer().View(t.Preview, entity.ShopOf(cashier), cashier.FullName(), s.now())
	return &v
}

// PrintableReceipt renders the session's committed receipt for the browser print
// view: the one awaiting printing, or else the last completed sale.
func (s *CheckoutService) PrintableReceipt(ctx context.Context, sessionID string, cashier entity.User) (*ReceiptView, error) {
	t, err := s.terminalRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	receipt := t.LastSale
	if t.State == enum.CheckoutStateCommitted && t.Preview != nil {
		receipt = t.Preview
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	v := s.printer.Renderer().View(receipt, entity.ShopOf(cashier), cashier.FullName(), s.now())
	return &v, nil
}

// recordFailure keeps the error for the modal. A terminal still in state from is moved to to.
func (s *CheckoutService) recordFailure(ctx context.Context, sessionID string, cause error, from, to enum.CheckoutState) *entity.Terminal {
	t, err := s.terminalRepo.Update(ctx, sessionID, func(t *entity.Terminal) error {
		if t.State == from {
			t.State = to
		}
		t.Fail(errors.New(apperror.MessageOr(cause, "Sale failed. Printing canceled.")))
		return nil
	})
	if err != nil {
		logging.FromContext(ctx).Error("failed to record checkout error", "error", err)
	}
	return t
}

// busy reports whether another request holds the terminal for a backend call.
func busy(t *entity.Terminal) bool {
	return t.State.InFlight() && !t.Stalled(inFlightTimeout)
}

// fillFromCart completes receipt lines the backend returned without product details.
func fillFromCart(r *entity.Receipt, cart entity.Cart) {
	if len(r.Products) == 0 {
		for _, l := range cart.Lines() {
			r.Products = append(r.Products, entity.ReceiptLine{
				Product:     entity.RefTo(l.Product.ID, l.Product),
				Quantity:    l.Quantity,
				PriceAtSale: l.UnitPrice(),
			})
		}
		return
	}
	byID := make(map[string]entity.Product, cart.Len())
	for _, l := range cart.Lines() {
		byID[l.Product.ID] = l.Product
	}
	for i, line := range r.Products {
		if line.Product.Resolved() {
			continue
		}
		if p, ok := byID[line.Product.ID]; ok {
			r.Products[i].Product = entity.RefTo(p.ID, p)
			if line.PriceAtSale == 0 {
				r.Products[i].PriceAtSale = p.EffectivePrice()
			}
		}
	}
}
