package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/fjod/go_cart/cartd/internal/domain"
	"github.com/fjod/go_cart/cartd/internal/summary"
	"github.com/sirupsen/logrus"
)

type CheckoutHandler struct {
	cart   Cart
	linker summary.Linker
	log    logrus.FieldLogger
}

func NewCheckoutHandler(cart Cart, linker summary.Linker, log logrus.FieldLogger) *CheckoutHandler {
	return &CheckoutHandler{
		cart:   cart,
		linker: linker,
		log:    log.WithField("component", "http.checkout"),
	}
}

type CheckoutRequestDTO struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Destination string `json:"destination"`
}

type CheckoutResponseDTO struct {
	Summary string `json:"summary"`
	Link    string `json:"link"`
}

// POST /api/v1/cart/checkout
// The body is optional; without it the summary has no customer lines and
// the link goes to the configured destination.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(h.log, w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	items := h.cart.Snapshot().Items
	if len(items) == 0 {
		respondError(h.log, w, http.StatusConflict, "cart_empty", "cart is empty")
		return
	}

	customer := domain.Customer{Name: req.Name, Phone: req.Phone, Address: req.Address}
	link, err := h.linker.Link(items, customer, req.Destination)
	if err != nil {
		if errors.Is(err, summary.ErrNoDestination) {
			respondError(h.log, w, http.StatusUnprocessableEntity, "no_destination", "no messaging destination")
			return
		}
		h.log.WithError(err).WithField("request_id", getRequestID(r.Context())).Error("error building order link")
		respondError(h.log, w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondJSON(h.log, w, http.StatusOK, CheckoutResponseDTO{
		Summary: h.linker.Formatter.Format(items, customer),
		Link:    link,
	})
}
