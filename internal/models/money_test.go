package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyJSONRoundsToTwoDecimals(t *testing.T) {
	raw, err := json.Marshal(NewMoneyFromDecimal(decimal.RequireFromString("954.955")))
	require.NoError(t, err)
	assert.Equal(t, `"954.96"`, string(raw))

	var fromNumber Money
	require.NoError(t, json.Unmarshal([]byte(`2099`), &fromNumber))
	assert.Equal(t, "2099.00", fromNumber.String())

	var fromString Money
	require.NoError(t, json.Unmarshal([]byte(`"45.041"`), &fromString))
	assert.Equal(t, "45.04", fromString.String())

	var fromNull Money
	require.NoError(t, json.Unmarshal([]byte(`null`), &fromNull))
	assert.True(t, fromNull.Decimal.IsZero())

	var invalid Money
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &invalid))
}

func TestOrderAmountBalanced(t *testing.T) {
	order := &Order{
		Subtotal:     NewMoneyFromInt(2000),
		ShippingCost: NewMoneyFromInt(99),
		Discount:     NewMoneyFromInt(99),
		TotalAmount:  NewMoneyFromInt(2000),
	}
	assert.True(t, order.AmountBalanced())

	order.TotalAmount = NewMoneyFromDecimal(decimal.RequireFromString("2000.01"))
	assert.True(t, order.AmountBalanced(), "one cent drift is tolerated")

	order.TotalAmount = NewMoneyFromInt(2099)
	assert.False(t, order.AmountBalanced())

	var missing *Order
	assert.False(t, missing.AmountBalanced())
}

func TestOrderItemLineTotal(t *testing.T) {
	item := OrderItem{
		EffectivePrice: NewMoneyFromDecimal(decimal.RequireFromString("899.99")),
		Quantity:       3,
	}
	assert.Equal(t, "2699.97", item.LineTotal().StringFixed(2))
}

func TestVariantPurchasable(t *testing.T) {
	variant := &ProductVariant{IsActive: true, Product: &Product{IsActive: true}}
	assert.True(t, variant.Purchasable())

	variant.Product.IsActive = false
	assert.False(t, variant.Purchasable())

	var missing *ProductVariant
	assert.False(t, missing.Purchasable())
}
