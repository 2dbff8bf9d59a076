package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/fjod/go_cart/cartd/internal/cart"
	"github.com/fjod/go_cart/cartd/internal/catalog"
	"github.com/fjod/go_cart/cartd/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const maxQuantity = 99

// Cart is the cart state the handlers drive.
type Cart interface {
	Add(ctx context.Context, product domain.Product, quantity int) bool
	Remove(ctx context.Context, id string) bool
	SetQuantity(ctx context.Context, id string, quantity int) bool
	Increment(ctx context.Context, id string) bool
	Decrement(ctx context.Context, id string) bool
	Clear(ctx context.Context)
	Quantity(id string) int
	Snapshot() cart.Snapshot
}

// ProductLookup resolves product ids to catalog records.
type ProductLookup interface {
	Product(ctx context.Context, id string) (domain.Product, error)
}

type CartHandler struct {
	// limitMu pairs the line-limit check with the mutation it guards.
	limitMu  sync.Mutex
	cart     Cart
	products ProductLookup
	timeout  time.Duration
	log      logrus.FieldLogger
}

func NewCartHandler(cart Cart, products ProductLookup, timeout time.Duration, log logrus.FieldLogger) *CartHandler {
	return &CartHandler{
		cart:     cart,
		products: products,
		timeout:  timeout,
		log:      log.WithField("component", "http.cart"),
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(h.log, w, http.StatusOK, h.view())
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.log, w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(h.log, w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 || req.Quantity > maxQuantity {
		respondError(h.log, w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	product, err := h.products.Product(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(h.log, w, http.StatusNotFound, "product_not_found", "product not found")
			return
		}
		h.log.WithError(err).WithFields(logrus.Fields{
			"product_id": req.ProductID,
			"request_id": getRequestID(r.Context()),
		}).Error("error looking up product")
		respondError(h.log, w, http.StatusServiceUnavailable, "catalog_unavailable", "product catalog unavailable")
		return
	}

	h.limitMu.Lock()
	if h.cart.Quantity(product.ID)+req.Quantity > maxQuantity {
		h.limitMu.Unlock()
		respondError(h.log, w, http.StatusConflict, "quantity_limit", "a line holds at most 99 units")
		return
	}
	added := h.cart.Add(ctx, product, req.Quantity)
	h.limitMu.Unlock()

	if !added {
		respondError(h.log, w, http.StatusUnprocessableEntity, "invalid_product", "product cannot be added")
		return
	}

	respondJSON(h.log, w, http.StatusCreated, h.view())
}

// PUT /api/v1/cart/items/{id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.log, w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > maxQuantity {
		respondError(h.log, w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	h.mutate(w, r, func(ctx context.Context, id string) bool {
		return h.cart.SetQuantity(ctx, id, req.Quantity)
	})
}

// POST /api/v1/cart/items/{id}/increment
func (h *CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.limitMu.Lock()
	defer h.limitMu.Unlock()

	if h.cart.Quantity(chi.URLParam(r, "id")) >= maxQuantity {
		respondError(h.log, w, http.StatusConflict, "quantity_limit", "a line holds at most 99 units")
		return
	}
	h.mutate(w, r, h.cart.Increment)
}

// POST /api/v1/cart/items/{id}/decrement
func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.cart.Decrement)
}

// DELETE /api/v1/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.cart.Remove)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.cart.Clear(ctx)
	respondJSON(h.log, w, http.StatusOK, h.view())
}

func (h *CartHandler) mutate(w http.ResponseWriter, r *http.Request, op func(context.Context, string) bool) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(h.log, w, http.StatusBadRequest, "invalid_item_id", "item id is required")
		return
	}
	if !op(ctx, id) {
		respondError(h.log, w, http.StatusNotFound, "item_not_found", "item not in cart")
		return
	}

	respondJSON(h.log, w, http.StatusOK, h.view())
}

// view renders one snapshot so every figure comes from the same lines.
func (h *CartHandler) view() CartResponseDTO {
	return toCartResponse(h.cart.Snapshot())
}
