package domain

import "github.com/shopspring/decimal"

// Product is the read-only catalog record the cart consumes on add.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Image string
}
