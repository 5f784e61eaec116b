package entity

import (
	"testing"

	"github.com/sangkips/trademate-console/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id string, price float64, qty int) Product {
	return Product{ID: id, Title: "Item " + id, UnitPrice: money.FromMajor(price), Quantity: qty}
}

func TestCartTotalWithDiscount(t *testing.T) {
	a := product("a", 500, 20)
	b := product("b", 1000, 20)
	b.IsDiscount = true
	b.DiscountAmount = money.FromMajor(100)

	c := NewCart(CartLine{Product: a, Quantity: 2}, CartLine{Product: b, Quantity: 1})

	assert.Equal(t, money.FromMajor(1900), c.Total())
}

func TestCartAddIncrementsExistingLine(t *testing.T) {
	p := product("a", 250, 5)

	c, err := Cart{}.Add(p)
	require.NoError(t, err)
	c, err = c.Add(p)
	require.NoError(t, err)

	require.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.Lines()[0].Quantity)
	assert.Equal(t, money.FromMajor(500), c.Total())
}

func TestCartAddRejectsOutOfStock(t *testing.T) {
	c, err := Cart{}.Add(product("a", 100, 0))

	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.True(t, c.IsEmpty())
}

func TestCartDecrementKeepsOne(t *testing.T) {
	c, err := Cart{}.Add(product("a", 100, 3))
	require.NoError(t, err)

	c = c.Decrement("a")

	assert.Equal(t, 1, c.Lines()[0].Quantity)
}

func TestCartOperationsDoNotMutateReceiver(t *testing.T) {
	orig := NewCart(CartLine{Product: product("a", 100, 3), Quantity: 2})

	_ = orig.Increment("a")
	_ = orig.Decrement("a")
	_ = orig.Remove("a")
	_ = orig.Clear()

	assert.Equal(t, 2, orig.Lines()[0].Quantity)
	assert.Equal(t, 1, orig.Len())
}

func TestCartSequenceKeepsTotalInvariant(t *testing.T) {
	a := product("a", 120.5, 50)
	b := product("b", 80, 50)
	b.IsDiscount = true
	b.DiscountAmount = money.FromMajor(100)

	c, _ := Cart{}.Add(a)
	c, _ = c.Add(b)
	c = c.Increment("a").Increment("a").Decrement("b").Increment("b")
	c = c.Remove("missing")

	var want money.Amount
	for _, l := range c.Lines() {
		assert.GreaterOrEqual(t, l.Quantity, 1)
		want += l.Product.EffectivePrice().Times(l.Quantity)
	}
	assert.Equal(t, want, c.Total())
	assert.Equal(t, money.FromMajor(361.5), c.Total())
}

func TestCartRemoveAndPayload(t *testing.T) {
	c := NewCart(
		CartLine{Product: product("a", 100, 3), Quantity: 2},
		CartLine{Product: product("b", 100, 3), Quantity: 1},
	)

	c = c.Remove("a")

	assert.Equal(t, []SaleItem{{ProductID: "b", QuantitySold: 1}}, c.Payload())
}

func TestCartRefreshKeepsVanishedLines(t *testing.T) {
	c := NewCart(
		CartLine{Product: product("a", 100, 3), Quantity: 2},
		CartLine{Product: product("b", 100, 3), Quantity: 1},
	)

	c = c.Refresh([]Product{product("a", 150, 1)})

	require.Equal(t, 2, c.Len())
	assert.Equal(t, money.FromMajor(150), c.Lines()[0].Product.UnitPrice)
	assert.Equal(t, money.FromMajor(100), c.Lines()[1].Product.UnitPrice)
	assert.Equal(t, money.FromMajor(400), c.Total())
}

func TestEffectivePriceNeverNegative(t *testing.T) {
	p := product("a", 50, 1)
	p.IsDiscount = true
	p.DiscountAmount = money.FromMajor(80)

	assert.Equal(t, money.Amount(0), p.EffectivePrice())

	p.IsDiscount = false
	assert.Equal(t, money.FromMajor(50), p.EffectivePrice())
}
