package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelsMatchByStatusCode(t *testing.T) {
	err := fmt.Errorf("list products: %w", NewAppError(http.StatusUnauthorized, "jwt expired"))

	assert.True(t, errors.Is(err, ErrTokenExpired))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(NewBadRequestError("x"), NewBadRequestError("x")))
}

func TestMessageOr(t *testing.T) {
	assert.Equal(t, "Product not found", MessageOr(NewNotFoundError("Product"), "fallback"))
	assert.Equal(t, "fallback", MessageOr(errors.New("dial tcp: refused"), "fallback"))
	assert.Equal(t, "fallback", MessageOr(NewAppError(http.StatusBadRequest, ""), "fallback"))
}

func TestGetAppErrorWrapsPlainErrors(t *testing.T) {
	appErr := GetAppError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.Equal(t, "boom", appErr.Message)
}
