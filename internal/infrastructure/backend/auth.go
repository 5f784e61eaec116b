package backend

import (
	"context"
	"net/http"

	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/domain/repository"
)

type authRepository struct {
	c *Client
}

// NewAuthRepository creates the backend-backed account repository
func NewAuthRepository(c *Client) repository.AuthRepository {
	return &authRepository{c: c}
}

func (r *authRepository) Login(ctx context.Context, email, password string) (*entity.AuthResult, error) {
	in := map[string]string{"email": email, "password": password}
	var out entity.AuthResult
	if err := r.c.sendJSON(ctx, http.MethodPost, "/login", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *authRepository) Logout(ctx context.Context) error {
	return r.c.sendJSON(ctx, http.MethodPost, "/logout", nil, nil)
}

func (r *authRepository) RegisterShop(ctx context.Context, input *repository.RegisterShopInput) error {
	fields := []formField{
		{"firstName", input.FirstName},
		{"lastName", input.LastName},
		{"shopName", input.ShopName},
		{"storeAddress", input.StoreAddress},
		{"email", input.Email},
		{"phone", input.Phone},
		{"dob", input.DOB},
		{"password", input.Password},
	}
	return r.c.sendMultipart(ctx, http.MethodPost, "/register-shop", fields, input.Files, nil)
}

func (r *authRepository) VerifyAccount(ctx context.Context, code string) error {
	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := r.c.sendJSON(ctx, http.MethodPost, "/verify-account", map[string]string{"code": code}, &out); err != nil {
		return err
	}
	if !out.Success {
		msg := out.Message
		if msg == "" {
			msg = "Invalid verification code"
		}
		return &Error{Method: http.MethodPost, Path: "/verify-account", Status: http.StatusBadRequest, Message: msg}
	}
	return nil
}
