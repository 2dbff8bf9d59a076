package http

import (
	"encoding/json"
	"net/http"

	"github.com/fjod/go_cart/cartd/internal/cart"
	"github.com/fjod/go_cart/cartd/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type CartItemDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type CartResponseDTO struct {
	Items                    []CartItemDTO `json:"items"`
	TotalItems               int           `json:"total_items"`
	Subtotal                 string        `json:"subtotal"`
	Shipping                 string        `json:"shipping"`
	Total                    string        `json:"total"`
	RemainingForFreeShipping string        `json:"remaining_for_free_shipping"`
	FreeShipping             bool          `json:"free_shipping"`
	// Warning is set when the last change is only held in memory.
	Warning string `json:"warning,omitempty"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toCartItemDTOs(items []domain.CartItem) []CartItemDTO {
	out := make([]CartItemDTO, len(items))
	for i, item := range items {
		out[i] = CartItemDTO{
			ID:        item.ID,
			Name:      item.Name,
			UnitPrice: money(item.UnitPrice),
			Image:     item.ImageRef,
			Quantity:  item.Quantity,
			LineTotal: money(item.LineTotal()),
		}
	}
	return out
}

func toCartResponse(snap cart.Snapshot) CartResponseDTO {
	resp := CartResponseDTO{
		Items:                    toCartItemDTOs(snap.Items),
		TotalItems:               snap.TotalItems,
		Subtotal:                 money(snap.Subtotal),
		Shipping:                 money(snap.Shipping),
		Total:                    money(snap.Total),
		RemainingForFreeShipping: money(snap.RemainingForFreeShipping),
		FreeShipping:             snap.Shipping.IsZero(),
	}
	if snap.SaveErr != nil {
		resp.Warning = "cart changes could not be saved"
	}
	return resp
}

func respondJSON(log logrus.FieldLogger, w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

func respondError(log logrus.FieldLogger, w http.ResponseWriter, status int, code, message string) {
	respondJSON(log, w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
