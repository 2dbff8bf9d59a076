package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestShippingPolicy_DefaultCost(t *testing.T) {
	policy := DefaultShippingPolicy()

	tests := []struct {
		subtotal string
		want     string
	}{
		{"0", "4.90"},
		{"19.99", "4.90"},
		{"20.00", "0"},
		{"25", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.subtotal, func(t *testing.T) {
			got := policy.Cost(decimal.RequireFromString(tt.subtotal))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestRemainingForFree(t *testing.T) {
	threshold := decimal.NewFromInt(20)

	assert.True(t, RemainingForFree(decimal.RequireFromString("12.50"), threshold).Equal(decimal.RequireFromString("7.50")))
	assert.True(t, RemainingForFree(decimal.NewFromInt(20), threshold).IsZero())
	assert.True(t, RemainingForFree(decimal.NewFromInt(30), threshold).IsZero())
}

func TestSubtotal_AvoidsFloatDrift(t *testing.T) {
	items := make([]CartItem, 0, 10)
	for i := 0; i < 10; i++ {
		items = append(items, CartItem{ID: string(rune('a' + i)), UnitPrice: decimal.RequireFromString("0.10"), Quantity: 1})
	}

	assert.Equal(t, "1", Subtotal(items).String())
	assert.True(t, Subtotal(nil).IsZero())
}
