package entity

import (
	"time"

	"github.com/sangkips/trademate-console/internal/domain/enum"
)

// Terminal is a browser session's point-of-sale state: the cart and where checkout stands.
type Terminal struct {
	SessionID string             `json:"sessionId"`
	Cart      Cart               `json:"cart"`
	State     enum.CheckoutState `json:"state"`
	Preview   *Receipt           `json:"preview,omitempty"`
	LastSale  *Receipt           `json:"lastSale,omitempty"` // most recent committed receipt, for the print view
	LastError string             `json:"lastError,omitempty"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// NewTerminal returns an idle terminal with an empty cart.
func NewTerminal(sessionID string) *Terminal {
	return &Terminal{
		SessionID: sessionID,
		State:     enum.CheckoutStateIdle,
		UpdatedAt: time.Now(),
	}
}

// ModalOpen reports whether the receipt modal should be shown.
func (t *Terminal) ModalOpen() bool {
	return t.State.ModalOpen()
}

// Stalled reports whether an in-flight preview or commit has not been heard from
// within after, as when the request that claimed it died.
func (t *Terminal) Stalled(after time.Duration) bool {
	return t.State.InFlight() && time.Since(t.UpdatedAt) > after
}

// CloseModal returns to idle, keeping the cart.
func (t *Terminal) CloseModal() {
	t.State = enum.CheckoutStateIdle
	t.Preview = nil
	t.LastError = ""
}

// Complete empties the cart and closes the modal after a sale is committed and printed.
// The committed receipt stays available as LastSale.
func (t *Terminal) Complete() {
	if t.Preview != nil {
		t.LastSale = t.Preview
	}
	t.Cart = t.Cart.Clear()
	t.CloseModal()
}

// Fail records a checkout error without changing the state.
func (t *Terminal) Fail(err error) {
	if err == nil {
		t.LastError = ""
		return
	}
	t.LastError = err.Error()
}
