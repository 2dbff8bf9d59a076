package domain

import "github.com/shopspring/decimal"

var (
	DefaultFreeShippingThreshold = decimal.RequireFromString("20.00")
	DefaultStandardShippingPrice = decimal.RequireFromString("4.90")
)

// ShippingPolicy is free shipping from FreeThreshold upwards, a flat
// StandardPrice below it.
type ShippingPolicy struct {
	FreeThreshold decimal.Decimal
	StandardPrice decimal.Decimal
}

func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{
		FreeThreshold: DefaultFreeShippingThreshold,
		StandardPrice: DefaultStandardShippingPrice,
	}
}

// Cost returns the shipping price for an order with the given subtotal.
func (p ShippingPolicy) Cost(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(p.FreeThreshold) {
		return decimal.Zero
	}
	return p.StandardPrice
}

// RemainingForFree returns how much more must be spent to reach threshold,
// never negative.
func RemainingForFree(subtotal, threshold decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(threshold) {
		return decimal.Zero
	}
	return threshold.Sub(subtotal)
}
