package repository

import (
	"context"

	"github.com/sangkips/trademate-console/internal/domain/entity"
)

// InviteCashierInput is the payload for inviting a cashier
type InviteCashierInput struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Phone          string `json:"phone"`
	GuarantorName  string `json:"guarantorName"`
	GuarantorPhone string `json:"guarantorPhone"`
}

// StaffRepository defines the interface for user/staff operations against the backend
type StaffRepository interface {
	List(ctx context.Context) ([]entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	InviteCashier(ctx context.Context, input *InviteCashierInput) error
	AssignCashier(ctx context.Context, cashierID, shopID string) error
	// ToggleDeactivation blocks an active user or unblocks a blocked one
	ToggleDeactivation(ctx context.Context, userID string) error
}

// ShopRepository reads shop details for receipt headers
type ShopRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Shop, error)
}
