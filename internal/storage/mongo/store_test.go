package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/go_cart/cartd/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupTestDB(t *testing.T) *Store {
	if testing.Short() {
		t.Skip("skipping MongoDB container test in short mode")
	}
	ctx := context.Background()

	// Start MongoDB container
	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := Connect(ctx, uri, "testdb")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Client().Disconnect(ctx) })

	return NewStore(db)
}

func TestStore_RoundTrip(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "cuchitas_cart")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Set(ctx, "cuchitas_cart", []byte(`[{"id":"1","quantity":2}]`)))
	require.NoError(t, store.Set(ctx, "cuchitas_cart", []byte(`[{"id":"1","quantity":3}]`)))

	got, err := store.Get(ctx, "cuchitas_cart")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1","quantity":3}]`, string(got))

	require.NoError(t, store.Delete(ctx, "cuchitas_cart"))
	require.NoError(t, store.Delete(ctx, "cuchitas_cart"))
	_, err = store.Get(ctx, "cuchitas_cart")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_CreateIndexes(t *testing.T) {
	store := setupTestDB(t)

	assert.NoError(t, store.CreateIndexes(context.Background(), 90*24*time.Hour))
}
