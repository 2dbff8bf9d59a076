package main

import (
	"context"
	"time"

	"github.com/fjod/go_cart/cartd/internal/config"
	"github.com/fjod/go_cart/cartd/internal/storage"
	"github.com/fjod/go_cart/cartd/internal/storage/bolt"
	"github.com/fjod/go_cart/cartd/internal/storage/memory"
	"github.com/fjod/go_cart/cartd/internal/storage/mongo"
	redisstore "github.com/fjod/go_cart/cartd/internal/storage/redis"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

// openStorage builds the backend named by STORAGE_DRIVER. Remote backends sit
// behind a circuit breaker; with the mongo driver a configured redis acts as
// a read cache in front of it. The returned func releases every connection.
func openStorage(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (storage.Store, func(), error) {
	log = log.WithField("driver", cfg.StorageDriver)

	switch cfg.StorageDriver {
	case config.DriverMemory:
		log.Warn("memory storage selected, the cart will not survive a restart")
		return memory.New(), func() {}, nil

	case config.DriverBolt:
		st, err := bolt.Open(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return st, func() {
			if err := st.Close(); err != nil {
				log.WithError(err).Warn("error closing bolt store")
			}
		}, nil

	case config.DriverRedis:
		client, st, err := openRedis(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return breaker("redis", st, log), closeRedis(client, log), nil

	case config.DriverMongo:
		db, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		closeMongo := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := db.Client().Disconnect(dctx); err != nil {
				log.WithError(err).Warn("error disconnecting mongo")
			}
		}

		ms := mongo.NewStore(db)
		if err := ms.CreateIndexes(ctx, cfg.MongoTTL); err != nil {
			log.WithError(err).Warn("error creating mongo indexes")
		}
		var st storage.Store = breaker("mongo", ms, log)

		if cfg.RedisAddr == "" {
			return st, closeMongo, nil
		}
		client, cache, err := openRedis(ctx, cfg)
		if err != nil {
			log.WithError(err).Warn("redis cache unavailable, reading from mongo only")
			return st, closeMongo, nil
		}
		cached := storage.NewCached(st, breaker("redis-cache", cache, log), log)
		return cached, func() {
			closeRedis(client, log)()
			closeMongo()
		}, nil
	}

	return nil, nil, errors.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

func openRedis(ctx context.Context, cfg *config.Config) (*redis.Client, *redisstore.Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	st := redisstore.NewStore(client, redisstore.WithTTL(cfg.RedisTTL, time.Hour))

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := st.Ping(pctx); err != nil {
		_ = client.Close()
		return nil, nil, errors.Wrapf(err, "redis %s", cfg.RedisAddr)
	}
	return client, st, nil
}

func closeRedis(client *redis.Client, log logrus.FieldLogger) func() {
	return func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Warn("error closing redis client")
		}
	}
}

func breaker(name string, next storage.Store, log logrus.FieldLogger) *storage.Breaker {
	return storage.NewBreaker(next, storage.BreakerSettings{
		Name: name,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("storage breaker state changed")
		},
	})
}
