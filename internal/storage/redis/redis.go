package redis

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/go_cart/cartd/internal/storage"
	pkgerrors "github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Store keeps values in Redis under a "cart:" prefix. With a non-zero TTL,
// every write refreshes the expiry with up to maxJitter added so that keys
// written together do not expire together.
type Store struct {
	client    *redis.Client
	baseTTL   time.Duration
	maxJitter time.Duration
}

type Option func(*Store)

func WithTTL(base, maxJitter time.Duration) Option {
	return func(s *Store) {
		s.baseTTL = base
		s.maxJitter = maxJitter
	}
}

func NewStore(client *redis.Client, opts ...Option) *Store {
	s := &Store{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (r *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "redis get failed")
	}
	return data, nil
}

func (r *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, redisKey(key), value, r.ttl()).Err(); err != nil {
		return pkgerrors.Wrap(err, "redis set failed")
	}
	return nil
}

func (r *Store) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return pkgerrors.Wrap(err, "redis delete failed")
	}
	return nil
}

func (r *Store) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Store) ttl() time.Duration {
	if r.baseTTL <= 0 {
		return 0
	}
	ttl := r.baseTTL
	if r.maxJitter > 0 {
		ttl += time.Duration(rand.Int63n(int64(r.maxJitter)))
	}
	return ttl
}

func redisKey(key string) string {
	return fmt.Sprintf("cart:%s", key)
}
