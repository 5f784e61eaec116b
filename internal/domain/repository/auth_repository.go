package repository

import (
	"context"

	"github.com/sangkips/trademate-console/internal/domain/entity"
)

// RegisterShopInput is the shop-owner sign-up form.
type RegisterShopInput struct {
	FirstName    string
	LastName     string
	ShopName     string
	StoreAddress string
	Email        string
	Phone        string
	DOB          string // YYYY-MM-DD
	Password     string
	Files        []entity.Upload // icon, banner, avatar
}

// AuthRepository defines the backend's account operations
type AuthRepository interface {
	Login(ctx context.Context, email, password string) (*entity.AuthResult, error)
	Logout(ctx context.Context) error
	RegisterShop(ctx context.Context, input *RegisterShopInput) error
	VerifyAccount(ctx context.Context, code string) error
}
