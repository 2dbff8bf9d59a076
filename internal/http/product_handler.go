package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/cartd/internal/domain"
	"github.com/sirupsen/logrus"
)

// ProductLister lists the whole catalog.
type ProductLister interface {
	List(ctx context.Context) ([]domain.Product, error)
}

type ProductHandler struct {
	products ProductLister
	timeout  time.Duration
	log      logrus.FieldLogger
}

func NewProductHandler(products ProductLister, timeout time.Duration, log logrus.FieldLogger) *ProductHandler {
	return &ProductHandler{
		products: products,
		timeout:  timeout,
		log:      log.WithField("component", "http.products"),
	}
}

type ProductResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Image string `json:"image,omitempty"`
}

type ProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

// GET /api/v1/products
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.products.List(ctx)
	if err != nil {
		h.log.WithError(err).WithField("request_id", getRequestID(r.Context())).Error("error listing products")
		respondError(h.log, w, http.StatusServiceUnavailable, "catalog_unavailable", "product catalog unavailable")
		return
	}

	products := make([]ProductResponse, len(res))
	for i, p := range res {
		products[i] = ProductResponse{
			ID:    p.ID,
			Name:  p.Name,
			Price: money(p.Price),
			Image: p.Image,
		}
	}

	respondJSON(h.log, w, http.StatusOK, &ProductsResponse{Products: products})
}
