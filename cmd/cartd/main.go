package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fjod/go_cart/cartd/internal/cart"
	"github.com/fjod/go_cart/cartd/internal/catalog"
	"github.com/fjod/go_cart/cartd/internal/config"
	"github.com/fjod/go_cart/cartd/internal/events"
	h "github.com/fjod/go_cart/cartd/internal/http"
	"github.com/fjod/go_cart/cartd/internal/logger"
	"github.com/fjod/go_cart/cartd/internal/persistence"
	"github.com/fjod/go_cart/cartd/internal/summary"
	"github.com/fjod/go_cart/cartd/internal/tracing"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	log := logger.New(cfg.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.InitTracerProvider(ctx, cfg.OTLPEndpoint, version)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize tracer provider")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(sctx); err != nil {
			log.WithError(err).Warn("error shutting down tracer provider")
		}
	}()

	store, closeStorage, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open storage")
	}
	defer closeStorage()

	products, err := catalog.Open(cfg.CatalogDSN)
	if err != nil {
		log.WithError(err).Fatal("failed to open catalog")
	}
	defer products.Close()
	if err := products.Migrate(); err != nil {
		log.WithError(err).Fatal("failed to migrate catalog")
	}

	adapter := persistence.NewAdapter(store, log, persistence.WithKey(cfg.CartKey))
	shopCart := cart.New(ctx, adapter,
		cart.WithShippingPolicy(cfg.ShippingPolicy()),
		cart.WithLogger(log),
	)
	if res := shopCart.LoadResult(); res.DataLost() {
		log.WithError(res.Err).WithField("status", res.Status.String()).Warn("saved cart could not be restored")
	}

	// confirmations go to the log in place of a storefront toast
	shopCart.Subscribe(func(ev cart.Event) {
		log.WithField("kind", ev.Kind).Info(ev.Message())
	})

	var workers sync.WaitGroup
	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.CartEventsTopic), cfg.CartKey, log)
		publisher.Attach(shopCart)

		consumer := events.NewCheckoutConsumer(
			events.NewKafkaReader(cfg.KafkaBrokers, cfg.CheckoutTopic, cfg.ConsumerGroupID),
			shopCart, cfg.CartKey, log,
		)

		workers.Add(2)
		go func() {
			defer workers.Done()
			publisher.Run(ctx)
		}()
		go func() {
			defer workers.Done()
			consumer.Run(ctx)
		}()
		defer func() {
			workers.Wait()
			consumer.Close()
			if err := publisher.Close(); err != nil {
				log.WithError(err).Warn("error closing kafka writer")
			}
		}()
	} else {
		log.Info("KAFKA_BROKERS not set, cart events stay local")
	}

	linker := summary.Linker{
		BaseURL:     cfg.MessagingBaseURL,
		Destination: cfg.CartOrderDestination,
		Formatter:   summary.NewFormatter(cfg.ShippingPolicy()),
	}
	router := h.NewRouter(
		h.RouterConfig{RequestTimeout: cfg.RequestTimeout, Log: log},
		h.NewCartHandler(shopCart, products, cfg.RequestTimeout, log),
		h.NewCheckoutHandler(shopCart, linker, log),
		h.NewProductHandler(products, cfg.RequestTimeout, log),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, tracing.ServiceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("cartd starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server error")
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down server...")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	log.Info("server exited")
}
