package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fjod/go_cart/cartd/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cart.db")
	store, err := Open(path)
	require.NoError(t, err)
	return store, path
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.ErrorContains(t, err, "storage path is required")
}

func TestStore_GetMissing(t *testing.T) {
	store, _ := openTempStore(t)
	defer store.Close()

	_, err := store.Get(context.Background(), "cuchitas_cart")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	store, path := openTempStore(t)

	require.NoError(t, store.Set(ctx, "cuchitas_cart", []byte(`[{"id":"1"}]`)))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "cuchitas_cart")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(got))
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, _ := openTempStore(t)
	defer store.Close()

	require.NoError(t, store.Set(ctx, "k", []byte("v")))
	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_SetRequiresKey(t *testing.T) {
	store, _ := openTempStore(t)
	defer store.Close()

	assert.Error(t, store.Set(context.Background(), "", []byte("v")))
}

func TestClose_NilSafe(t *testing.T) {
	var s *Store
	assert.NoError(t, s.Close())
}
