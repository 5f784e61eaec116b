package handler

import (
	"strconv"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/presentation/http/dto/request"
	"github.com/sangkips/trademate-console/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageURL(t *testing.T) {
	assert.Equal(t, "/products?page=2", PageURL("/products", 2))
	assert.Equal(t, "/products?filter=low&page=3", PageURL("/products?filter=low&page=1", 3))
}

func TestListURLSkipsEmptyValues(t *testing.T) {
	assert.Equal(t, "/staff", listURL("/staff", "search", ""))
	assert.Equal(t, "/staff?search=ada", listURL("/staff", "search", "ada"))
}

func TestMatchProducts(t *testing.T) {
	products := []entity.Product{{ID: "p1", Title: "Golden Rice"}, {ID: "p2", Title: "Beans"}}

	assert.Len(t, matchProducts(products, ""), 2)
	got := matchProducts(products, "  rice ")
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
	assert.Empty(t, matchProducts(products, "yam"))
}

func TestFormErrorsUsesFormFieldNames(t *testing.T) {
	RegisterFormTagNames()

	err := binding.Validator.ValidateStruct(&request.LoginRequest{Email: "nope"})
	require.Error(t, err)

	fields, ok := formErrors(err)
	require.True(t, ok)
	assert.Equal(t, "Please enter a valid email!", fields["email"])
	assert.Equal(t, "This field is required", fields["password"])
}

func TestInviteFormRejectsBadEmail(t *testing.T) {
	RegisterFormTagNames()

	err := binding.Validator.ValidateStruct(&request.InviteCashierRequest{
		FirstName: "Ada", LastName: "Obi", Email: "ada-at-example",
		Phone: "0800", GuarantorName: "Ike", GuarantorPhone: "0801",
		Password: "secret", ConfirmPassword: "secret",
	})
	require.Error(t, err)

	fields, ok := formErrors(err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"email": "Please enter a valid email!"}, fields)
}

func TestFormErrorsFromServiceValidation(t *testing.T) {
	err := apperror.NewValidationError([]apperror.FieldError{
		{Field: "title", Message: "Title is required"},
		{Field: "title", Message: "ignored"},
	})

	fields, ok := formErrors(err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"title": "Title is required"}, fields)
}

func TestFormErrorsIgnoresOtherErrors(t *testing.T) {
	_, ok := formErrors(apperror.ErrUnavailable)
	assert.False(t, ok)

	fields, ok := formErrors(&strconv.NumError{Func: "ParseFloat", Num: "abc", Err: strconv.ErrSyntax})
	assert.True(t, ok)
	assert.Contains(t, fields, "form")
}
