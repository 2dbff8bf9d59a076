package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/fjod/go_cart/cartd/internal/domain"
	"github.com/fjod/go_cart/cartd/internal/storage"
	"github.com/fjod/go_cart/cartd/internal/storage/memory"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct {
	getErr error
	setErr error
}

func (b brokenStore) Get(context.Context, string) ([]byte, error) { return nil, b.getErr }
func (b brokenStore) Set(context.Context, string, []byte) error   { return b.setErr }
func (b brokenStore) Delete(context.Context, string) error        { return nil }

func sampleItems() []domain.CartItem {
	return []domain.CartItem{
		{ID: "taco-pastor", Name: "Taco al pastor", UnitPrice: decimal.RequireFromString("3.50"), ImageRef: "img/pastor.jpg", Quantity: 4},
		{ID: "horchata", Name: "Horchata", UnitPrice: decimal.RequireFromString("2.90"), ImageRef: "img/horchata.jpg", Quantity: 1},
		{ID: "nachos", Name: "Nachos", UnitPrice: decimal.RequireFromString("6"), Quantity: 2},
	}
}

func TestAdapter_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	a := NewAdapter(memory.New(), log)

	require.NoError(t, a.Save(ctx, sampleItems()))
	result := a.Load(ctx)

	require.Equal(t, StatusLoaded, result.Status)
	require.NoError(t, result.Err)
	require.Len(t, result.Items, 3)
	for i, want := range sampleItems() {
		got := result.Items[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.ImageRef, got.ImageRef)
		assert.Equal(t, want.Quantity, got.Quantity)
		assert.True(t, want.UnitPrice.Equal(got.UnitPrice), "price of %s", want.ID)
	}
}

func TestAdapter_WireFormat(t *testing.T) {
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	store := memory.New()
	a := NewAdapter(store, log)

	require.NoError(t, a.Save(ctx, sampleItems()[:1]))

	data, err := store.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"taco-pastor","name":"Taco al pastor","price":3.5,"image":"img/pastor.jpg","quantity":4}]`, string(data))
}

func TestAdapter_LoadMissing(t *testing.T) {
	log, _ := test.NewNullLogger()
	a := NewAdapter(memory.New(), log)

	result := a.Load(context.Background())
	assert.Equal(t, StatusMissing, result.Status)
	assert.Empty(t, result.Items)
	assert.False(t, result.DataLost())
}

func TestAdapter_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{{{`},
		{"truncated", `[{"id":"a","name":"A","price":1,`},
		{"object instead of list", `{"id":"a"}`},
		{"zero quantity", `[{"id":"a","name":"A","price":1,"quantity":0}]`},
		{"missing id", `[{"name":"A","price":1,"quantity":1}]`},
		{"negative price", `[{"id":"a","name":"A","price":-1,"quantity":1}]`},
		{"duplicate id", `[{"id":"a","price":1,"quantity":1},{"id":"a","price":1,"quantity":2}]`},
		{"price not a number", `[{"id":"a","price":"cheap","quantity":1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			log, hook := test.NewNullLogger()
			store := memory.New()
			require.NoError(t, store.Set(ctx, DefaultKey, []byte(tt.payload)))

			result := NewAdapter(store, log).Load(ctx)

			assert.Equal(t, StatusCorrupt, result.Status)
			assert.Error(t, result.Err)
			assert.Empty(t, result.Items)
			assert.True(t, result.DataLost())
			require.NotNil(t, hook.LastEntry())
			assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
		})
	}
}

func TestAdapter_LoadAcceptsNumericIDsAndQuotedPrices(t *testing.T) {
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	store := memory.New()
	require.NoError(t, store.Set(ctx, DefaultKey, []byte(`[{"id":7,"name":"Quesadilla","price":"4.25","image":"q.jpg","quantity":2}]`)))

	result := NewAdapter(store, log).Load(ctx)

	require.Equal(t, StatusLoaded, result.Status)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "7", result.Items[0].ID)
	assert.Equal(t, "4.25", result.Items[0].UnitPrice.StringFixed(2))
}

func TestAdapter_LoadUnavailable(t *testing.T) {
	log, _ := test.NewNullLogger()
	a := NewAdapter(brokenStore{getErr: errors.New("disk on fire")}, log)

	result := a.Load(context.Background())
	assert.Equal(t, StatusUnavailable, result.Status)
	assert.ErrorContains(t, result.Err, "disk on fire")
	assert.Empty(t, result.Items)
}

func TestAdapter_SaveFailureIsLoggedAndReturned(t *testing.T) {
	log, hook := test.NewNullLogger()
	a := NewAdapter(brokenStore{setErr: errors.New("quota exceeded")}, log)

	err := a.Save(context.Background(), sampleItems())
	assert.ErrorContains(t, err, "quota exceeded")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "error saving cart", hook.LastEntry().Message)
}

func TestAdapter_CustomKey(t *testing.T) {
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	store := memory.New()
	a := NewAdapter(store, log, WithKey("other"))

	require.NoError(t, a.Save(ctx, nil))
	assert.Equal(t, "other", a.Key())

	_, err := store.Get(ctx, DefaultKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	data, err := store.Get(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
