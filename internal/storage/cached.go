package storage

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Cached puts a cache store in front of a primary store. Reads are served
// from the cache when possible; writes go to the primary and invalidate the
// cached copy. Cache failures are logged and never fail the call.
type Cached struct {
	primary Store
	cache   Store
	sfg     singleflight.Group // Prevents cache stampede
	log     logrus.FieldLogger
}

func NewCached(primary, cache Store, log logrus.FieldLogger) *Cached {
	return &Cached{
		primary: primary,
		cache:   cache,
		log:     log.WithField("component", "storage.cached"),
	}
}

func (c *Cached) Get(ctx context.Context, key string) ([]byte, error) {
	// Use singleflight so concurrent misses for one key share a primary read
	v, err, _ := c.sfg.Do(key, func() (interface{}, error) {
		data, err := c.cache.Get(ctx, key)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			c.log.WithError(err).WithField("key", key).Warn("cache get failed")
		}

		data, err = c.primary.Get(ctx, key)
		if err != nil {
			return nil, err
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if errSet := c.cache.Set(setCtx, key, data); errSet != nil {
				c.log.WithError(errSet).WithField("key", key).Warn("cache set failed")
			}
		}()

		return data, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]byte), nil
}

func (c *Cached) Set(ctx context.Context, key string, value []byte) error {
	if err := c.primary.Set(ctx, key, value); err != nil {
		return err
	}
	c.invalidate(key)
	return nil
}

func (c *Cached) Delete(ctx context.Context, key string) error {
	if err := c.primary.Delete(ctx, key); err != nil {
		return err
	}
	c.invalidate(key)
	return nil
}

func (c *Cached) invalidate(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.cache.Delete(ctx, key); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache invalidate failed")
	}
}
