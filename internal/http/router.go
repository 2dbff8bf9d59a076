package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type RouterConfig struct {
	RequestTimeout time.Duration
	Log            logrus.FieldLogger
}

func NewRouter(cfg RouterConfig, cart *CartHandler, checkout *CheckoutHandler, products *ProductHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: cfg.Log, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(cfg.Log, w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", products.Get)
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cart.GetCart)
			r.Delete("/", cart.ClearCart)
			r.Post("/checkout", checkout.Checkout)
			r.Post("/items", cart.AddItem)
			r.Put("/items/{id}", cart.UpdateQuantity)
			r.Delete("/items/{id}", cart.RemoveItem)
			r.Post("/items/{id}/increment", cart.Increment)
			r.Post("/items/{id}/decrement", cart.Decrement)
		})
	})

	return r
}
