package entity

import (
	"strings"

	"github.com/sangkips/trademate-console/internal/domain/enum"
)

// User is a backend account: an admin owning a shop, or a cashier invited by one
type User struct {
	ID                   string    `json:"_id"`
	FirstName            string    `json:"firstName"`
	LastName             string    `json:"lastName"`
	Email                string    `json:"email"`
	Phone                string    `json:"phone,omitempty"`
	GuarantorName        string    `json:"guarantorName,omitempty"`
	GuarantorPhone       string    `json:"guarantorPhone,omitempty"`
	Role                 enum.Role `json:"role"`
	IsAccountDeactivated bool      `json:"isAccountDeactivated"`
	AssignedShop         Ref[Shop] `json:"assignedShop"`
	ParentShop           Ref[Shop] `json:"parentShop"`
}

func (u User) RefID() string {
	return u.ID
}

// FullName returns "First Last".
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// ShopID returns the shop the user works for: the parent shop for admins and cashiers alike,
// falling back to the assigned shop.
func (u User) ShopID() string {
	if u.ParentShop.ID != "" {
		return u.ParentShop.ID
	}
	return u.AssignedShop.ID
}

// IsAssigned reports whether a cashier has been assigned to a shop.
func (u User) IsAssigned() bool {
	return !u.AssignedShop.IsZero()
}

// Shop is the business a receipt is issued for
type Shop struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Icon    string `json:"icon,omitempty"`
	Banner  string `json:"banner,omitempty"`
}

func (s Shop) RefID() string {
	return s.ID
}

// ShopOf returns the embedded shop for display, preferring the assigned shop.
func ShopOf(u User) Shop {
	if u.AssignedShop.Value != nil {
		return *u.AssignedShop.Value
	}
	if u.ParentShop.Value != nil {
		return *u.ParentShop.Value
	}
	return Shop{ID: u.ShopID()}
}
