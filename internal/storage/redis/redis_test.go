package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/go_cart/cartd/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a Store pointing at it
func setupTestRedis(t *testing.T, opts ...Option) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewStore(client, opts...), mr
}

func TestGet_Success(t *testing.T) {
	store, mr := setupTestRedis(t)

	require.NoError(t, mr.Set(redisKey("cuchitas_cart"), `[{"id":"taco"}]`))

	got, err := store.Get(context.Background(), "cuchitas_cart")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"taco"}]`, string(got))
}

func TestGet_Missing(t *testing.T) {
	store, _ := setupTestRedis(t)

	got, err := store.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Nil(t, got)
}

func TestGet_ServerDown(t *testing.T) {
	store, mr := setupTestRedis(t)
	mr.Close()

	_, err := store.Get(context.Background(), "cuchitas_cart")
	require.ErrorContains(t, err, "redis get failed")
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}

func TestSet_NoTTLByDefault(t *testing.T) {
	store, mr := setupTestRedis(t)

	require.NoError(t, store.Set(context.Background(), "cuchitas_cart", []byte("[]")))

	stored, err := mr.Get(redisKey("cuchitas_cart"))
	require.NoError(t, err)
	assert.Equal(t, "[]", stored)
	assert.Equal(t, time.Duration(0), mr.TTL(redisKey("cuchitas_cart")))
}

func TestSet_WithTTL(t *testing.T) {
	store, mr := setupTestRedis(t, WithTTL(15*time.Minute, 5*time.Minute))

	require.NoError(t, store.Set(context.Background(), "cuchitas_cart", []byte("[]")))

	ttl := mr.TTL(redisKey("cuchitas_cart"))
	assert.True(t, ttl >= 15*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl <= 20*time.Minute, "TTL should be base + max jitter")
}

func TestDelete_Success(t *testing.T) {
	store, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(redisKey("cuchitas_cart"), "[]"))

	require.NoError(t, store.Delete(context.Background(), "cuchitas_cart"))
	assert.False(t, mr.Exists(redisKey("cuchitas_cart")))

	// Deleting non-existent key should not error
	assert.NoError(t, store.Delete(context.Background(), "cuchitas_cart"))
}

func TestPing(t *testing.T) {
	store, _ := setupTestRedis(t)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestRedisKey_Format(t *testing.T) {
	assert.Equal(t, "cart:test123", redisKey("test123"))
}
