// Package config reads the daemon settings from the environment.
package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/fjod/go_cart/cartd/internal/domain"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	DriverMemory = "memory"
	DriverBolt   = "bolt"
	DriverRedis  = "redis"
	DriverMongo  = "mongo"
)

type Config struct {
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"8080"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`

	StorageDriver string        `env:"STORAGE_DRIVER" envDefault:"bolt"`
	BoltPath      string        `env:"BOLT_PATH" envDefault:"cart.db"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisTTL      time.Duration `env:"REDIS_TTL" envDefault:"168h"`
	MongoURI      string        `env:"MONGO_URI"`
	MongoDBName   string        `env:"MONGO_DB_NAME" envDefault:"cartd"`
	MongoTTL      time.Duration `env:"MONGO_TTL" envDefault:"720h"`
	CartKey       string        `env:"CART_KEY" envDefault:"cuchitas_cart"`

	CatalogDSN string `env:"CATALOG_DSN" envDefault:"file:catalog.db"`

	KafkaBrokers    []string `env:"KAFKA_BROKERS" envSeparator:","`
	CartEventsTopic string   `env:"CART_EVENTS_TOPIC" envDefault:"cart-events"`
	CheckoutTopic   string   `env:"CHECKOUT_TOPIC" envDefault:"checkout-outbox"`
	ConsumerGroupID string   `env:"CHECKOUT_GROUP_ID" envDefault:"cartd-consumer"`

	MessagingBaseURL     string `env:"MESSAGING_BASE_URL" envDefault:"https://wa.me"`
	CartOrderDestination string `env:"CART_ORDER_DESTINATION" envDefault:"34600000000"`

	FreeShippingThreshold decimal.Decimal `env:"SHIPPING_FREE_THRESHOLD" envDefault:"20.00"`
	StandardShippingPrice decimal.Decimal `env:"SHIPPING_STANDARD_PRICE" envDefault:"4.90"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return errors.Wrap(err, "parse env")
	}
	return nil
}

// Load parses and validates the daemon configuration.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverMemory:
	case DriverBolt:
		if c.BoltPath == "" {
			return errors.New("BOLT_PATH is required for the bolt driver")
		}
	case DriverRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required for the redis driver")
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required for the mongo driver")
		}
	default:
		return errors.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.CartKey == "" {
		return errors.New("CART_KEY must not be empty")
	}
	if c.FreeShippingThreshold.IsNegative() || c.StandardShippingPrice.IsNegative() {
		return errors.New("shipping amounts must not be negative")
	}
	return nil
}

func (c *Config) ShippingPolicy() domain.ShippingPolicy {
	return domain.ShippingPolicy{
		FreeThreshold: c.FreeShippingThreshold,
		StandardPrice: c.StandardShippingPrice,
	}
}
