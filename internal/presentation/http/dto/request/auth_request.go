package request

import "mime/multipart"

// LoginRequest represents the sign-in form
type LoginRequest struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

// RegisterShopRequest represents the shop-owner sign-up form
type RegisterShopRequest struct {
	FirstName       string                `form:"firstName" binding:"required,max=255"`
	LastName        string                `form:"lastName" binding:"required,max=255"`
	ShopName        string                `form:"shopName" binding:"required,max=255"`
	StoreAddress    string                `form:"storeAddress" binding:"required"`
	Email           string                `form:"email" binding:"required,email"`
	Phone           string                `form:"phone" binding:"required"`
	DOB             string                `form:"dob" binding:"required,datetime=2006-01-02"`
	Password        string                `form:"password" binding:"required,min=6"`
	PasswordConfirm string                `form:"confirmPassword" binding:"required,eqfield=Password"`
	Icon            *multipart.FileHeader `form:"icon"`
	Banner          *multipart.FileHeader `form:"banner"`
	Avatar          *multipart.FileHeader `form:"avatar"`
}

// VerifyAccountRequest represents the verification-code form
type VerifyAccountRequest struct {
	Code string `form:"code" binding:"required,len=6,numeric"`
}
