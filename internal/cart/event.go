package cart

import (
	"fmt"

	"github.com/fjod/go_cart/cartd/internal/domain"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindAdded   Kind = "added"
	KindRemoved Kind = "removed"
	KindUpdated Kind = "updated"
	KindCleared Kind = "cleared"
)

// Event describes one committed mutation. Item is the affected line after the
// change (before it, for removals) and is zero for KindCleared. TotalItems and
// Subtotal are the cart figures right after this mutation, which may differ
// from what Store reports by the time the event is delivered. SaveErr is set
// when the mutation could not be persisted; the in-memory cart has changed
// regardless.
type Event struct {
	Kind       Kind
	Item       domain.CartItem
	TotalItems int
	Subtotal   decimal.Decimal
	Store      *Store
	SaveErr    error
}

// Message is the shopper-facing confirmation for the event.
func (e Event) Message() string {
	switch e.Kind {
	case KindAdded:
		return fmt.Sprintf("%s added to cart", e.Item.Name)
	case KindRemoved:
		return fmt.Sprintf("%s removed from cart", e.Item.Name)
	case KindUpdated:
		return fmt.Sprintf("%s quantity set to %d", e.Item.Name, e.Item.Quantity)
	case KindCleared:
		return "cart emptied"
	default:
		return ""
	}
}
