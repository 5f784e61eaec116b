package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/domain/repository"
)

type staffRepository struct {
	c *Client
}

// NewStaffRepository creates the backend-backed staff repository
func NewStaffRepository(c *Client) repository.StaffRepository {
	return &staffRepository{c: c}
}

func (r *staffRepository) List(ctx context.Context) ([]entity.User, error) {
	var out struct {
		Users []entity.User `json:"users"`
	}
	if err := r.c.get(ctx, "/users", nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var out struct {
		User *entity.User `json:"user"`
	}
	if err := r.c.get(ctx, "/users/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, &Error{Method: http.MethodGet, Path: "/users/" + id, Status: http.StatusNotFound, Message: "User not found"}
	}
	return out.User, nil
}

func (r *staffRepository) InviteCashier(ctx context.Context, input *repository.InviteCashierInput) error {
	return r.c.sendJSON(ctx, http.MethodPost, "/invite-cashier", input, nil)
}

func (r *staffRepository) AssignCashier(ctx context.Context, cashierID, shopID string) error {
	in := map[string]string{"cashierId": cashierID, "shopId": shopID}
	return r.c.sendJSON(ctx, http.MethodPost, "/assign-cashier", in, nil)
}

func (r *staffRepository) ToggleDeactivation(ctx context.Context, userID string) error {
	return r.c.sendJSON(ctx, http.MethodPut, "/deactivate", map[string]string{"userId": userID}, nil)
}

type shopRepository struct {
	c *Client
}

// NewShopRepository creates the backend-backed shop reader
func NewShopRepository(c *Client) repository.ShopRepository {
	return &shopRepository{c: c}
}

func (r *shopRepository) GetByID(ctx context.Context, id string) (*entity.Shop, error) {
	var out struct {
		Shop *entity.Shop `json:"shop"`
	}
	if err := r.c.get(ctx, "/shops/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	if out.Shop == nil {
		return nil, &Error{Method: http.MethodGet, Path: "/shops/" + id, Status: http.StatusNotFound, Message: "Shop not found"}
	}
	return out.Shop, nil
}
