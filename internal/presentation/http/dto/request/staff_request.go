package request

import (
	"github.com/sangkips/trademate-console/internal/application/service"
	"github.com/sangkips/trademate-console/internal/domain/repository"
)

// InviteCashierRequest represents the invite-cashier form
type InviteCashierRequest struct {
	FirstName       string `form:"firstName" binding:"required"`
	LastName        string `form:"lastName" binding:"required"`
	Email           string `form:"email" binding:"required,email"`
	Phone           string `form:"phone" binding:"required"`
	GuarantorName   string `form:"guarantorName" binding:"required"`
	GuarantorPhone  string `form:"guarantorPhone" binding:"required"`
	Password        string `form:"password" binding:"required,min=6"`
	ConfirmPassword string `form:"confirmPassword" binding:"required,eqfield=Password"`
}

// ToInput converts the form into the service input.
func (r *InviteCashierRequest) ToInput() *service.InviteCashierInput {
	return &service.InviteCashierInput{
		InviteCashierInput: repository.InviteCashierInput{
			FirstName:      r.FirstName,
			LastName:       r.LastName,
			Email:          r.Email,
			Password:       r.Password,
			Phone:          r.Phone,
			GuarantorName:  r.GuarantorName,
			GuarantorPhone: r.GuarantorPhone,
		},
		ConfirmPassword: r.ConfirmPassword,
	}
}

// ListRequest represents paging and search query parameters
type ListRequest struct {
	Search  string `form:"search"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
