// Package summary renders a cart into the order message handed to a
// messaging deep link.
package summary

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/fjod/go_cart/cartd/internal/domain"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	DefaultCurrency = "€"
	DefaultBaseURL  = "https://wa.me"
)

var ErrNoDestination = errors.New("no messaging destination configured")

// Labels is the fixed text of an order summary.
type Labels struct {
	Title        string
	Customer     string
	Phone        string
	Address      string
	Items        string
	Subtotal     string
	Shipping     string
	FreeShipping string
	Total        string
}

// DefaultLabels is the storefront's Spanish wording.
func DefaultLabels() Labels {
	return Labels{
		Title:        "Nuevo Pedido - Cuchitas",
		Customer:     "Cliente",
		Phone:        "Teléfono",
		Address:      "Dirección",
		Items:        "Productos",
		Subtotal:     "Subtotal",
		Shipping:     "Envío",
		FreeShipping: "GRATIS",
		Total:        "TOTAL",
	}
}

type Formatter struct {
	Labels   Labels
	Currency string
	Policy   domain.ShippingPolicy
}

func NewFormatter(policy domain.ShippingPolicy) Formatter {
	return Formatter{
		Labels:   DefaultLabels(),
		Currency: DefaultCurrency,
		Policy:   policy,
	}
}

// Format builds the plain order text. Customer lines appear only for the
// fields that are set.
func (f Formatter) Format(items []domain.CartItem, customer domain.Customer) string {
	l := f.Labels
	var b strings.Builder

	fmt.Fprintf(&b, "🌮 *%s*\n\n", l.Title)

	if customer.Name != "" {
		fmt.Fprintf(&b, "👤 *%s:* %s\n", l.Customer, customer.Name)
	}
	if customer.Phone != "" {
		fmt.Fprintf(&b, "📱 *%s:* %s\n", l.Phone, customer.Phone)
	}
	if customer.Address != "" {
		fmt.Fprintf(&b, "📍 *%s:* %s\n", l.Address, customer.Address)
	}

	fmt.Fprintf(&b, "\n📦 *%s:*\n", l.Items)
	for _, item := range items {
		fmt.Fprintf(&b, "• %s x%d - %s\n", item.Name, item.Quantity, f.money(item.LineTotal()))
	}

	subtotal := domain.Subtotal(items)
	shipping := f.Policy.Cost(subtotal)

	fmt.Fprintf(&b, "\n💰 *%s:* %s", l.Subtotal, f.money(subtotal))
	if shipping.IsPositive() {
		fmt.Fprintf(&b, "\n🚚 *%s:* %s", l.Shipping, f.money(shipping))
	} else {
		fmt.Fprintf(&b, "\n🚚 *%s:* %s", l.Shipping, l.FreeShipping)
	}
	fmt.Fprintf(&b, "\n\n💵 *%s:* %s", l.Total, f.money(subtotal.Add(shipping)))

	return b.String()
}

// Message is Format escaped for use as a URL query value.
func (f Formatter) Message(items []domain.CartItem, customer domain.Customer) string {
	return Encode(f.Format(items, customer))
}

func (f Formatter) money(d decimal.Decimal) string {
	return d.StringFixed(2) + f.Currency
}

// Encode escapes text for a query value. Spaces become %20, never "+".
func Encode(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// Linker builds "<BaseURL>/<destination>?text=<message>" links.
type Linker struct {
	BaseURL     string
	Destination string
	Formatter   Formatter
}

// Link uses destination when given, the configured Destination otherwise.
// Only digits of the destination are kept.
func (l Linker) Link(items []domain.CartItem, customer domain.Customer, destination string) (string, error) {
	dest := digits(destination)
	if dest == "" {
		dest = digits(l.Destination)
	}
	if dest == "" {
		return "", ErrNoDestination
	}

	base := strings.TrimRight(l.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	return fmt.Sprintf("%s/%s?text=%s", base, dest, l.Formatter.Message(items, customer)), nil
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
