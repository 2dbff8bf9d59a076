package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	require.NoError(t, c.Migrate())
	return c
}

func TestProduct_Found(t *testing.T) {
	c := setupCatalog(t)

	p, err := c.Product(context.Background(), "nachos")
	require.NoError(t, err)
	assert.Equal(t, "Nachos", p.Name)
	assert.Equal(t, "8.00", p.Price.StringFixed(2))
	assert.Equal(t, "images/nachos.jpg", p.Image)
}

func TestProduct_NotFound(t *testing.T) {
	c := setupCatalog(t)

	_, err := c.Product(context.Background(), "burrito")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestList(t *testing.T) {
	c := setupCatalog(t)

	products, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 5)
	assert.Equal(t, "Horchata", products[0].Name)
}

func TestMigrate_Idempotent(t *testing.T) {
	c := setupCatalog(t)
	assert.NoError(t, c.Migrate())
}

func TestOpen_InMemory(t *testing.T) {
	c, err := Open(":memory:")
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Migrate())
	_, err = c.Product(context.Background(), "horchata")
	assert.NoError(t, err)
}
