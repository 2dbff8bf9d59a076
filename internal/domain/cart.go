package domain

import "github.com/shopspring/decimal"

// CartItem is one line of the cart. Name, UnitPrice and ImageRef are copied
// from the product when the line is first added.
type CartItem struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	ImageRef  string
	Quantity  int
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Subtotal sums the line totals of items.
func Subtotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Customer is the optional contact data rendered into an order summary.
type Customer struct {
	Name    string
	Phone   string
	Address string
}
