package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/entity"
	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/infrastructure/storage"
)

func product(id int, price, discount string) entity.Product {
	return entity.Product{
		ID:                 id,
		Title:              "Product",
		Price:              decimal.RequireFromString(price),
		DiscountPercentage: decimal.RequireFromString(discount),
	}
}

func newTestCart(t *testing.T, store *fakeStorage, repo *fakeCatalog) CartUseCase {
	t.Helper()
	cart, err := NewCartUseCase(context.Background(), store, repo, zap.NewNop())
	require.NoError(t, err)
	return cart
}

func TestCart_AddIncrements(t *testing.T) {
	ctx := context.Background()
	store := newFakeStorage()
	cart := newTestCart(t, store, newFakeCatalog(0))

	require.NoError(t, cart.AddToCart(ctx, product(1, "10", "0"), 2))
	require.NoError(t, cart.AddToCart(ctx, product(1, "10", "0"), 3))
	require.NoError(t, cart.AddToCart(ctx, product(2, "5", "0"), 1))

	assert.Equal(t, []entity.CartEntry{{ProductID: 1, Quantity: 5}, {ProductID: 2, Quantity: 1}}, cart.Entries())
	assert.Equal(t, 6, cart.GetCartCount())

	raw, ok := store.value(entity.CartStorageKey)
	require.True(t, ok)
	assert.JSONEq(t, `{"1": 5, "2": 1}`, raw)
}

func TestCart_AddValidation(t *testing.T) {
	ctx := context.Background()
	cart := newTestCart(t, newFakeStorage(), newFakeCatalog(0))

	for _, qty := range []int{0, -2} {
		assert.ErrorIs(t, cart.AddToCart(ctx, product(1, "10", "0"), qty), entity.ErrValidation)
	}
	assert.ErrorIs(t, cart.AddToCart(ctx, product(0, "10", "0"), 1), entity.ErrValidation)
	assert.Zero(t, cart.GetCartCount())
}

func TestCart_RemoveUpdateClear(t *testing.T) {
	ctx := context.Background()
	store := newFakeStorage()
	cart := newTestCart(t, store, newFakeCatalog(0))

	require.NoError(t, cart.AddToCart(ctx, product(1, "10", "0"), 1))
	require.NoError(t, cart.AddToCart(ctx, product(2, "10", "0"), 1))
	require.NoError(t, cart.AddToCart(ctx, product(3, "10", "0"), 1))

	require.NoError(t, cart.UpdateQuantity(ctx, 1, 4))
	require.NoError(t, cart.UpdateQuantity(ctx, 2, 0))
	require.NoError(t, cart.RemoveFromCart(ctx, 3))
	require.NoError(t, cart.RemoveFromCart(ctx, 42))

	assert.Equal(t, []entity.CartEntry{{ProductID: 1, Quantity: 4}}, cart.Entries())

	require.NoError(t, cart.ClearCart(ctx))
	assert.Zero(t, cart.GetCartCount())
	raw, _ := store.value(entity.CartStorageKey)
	assert.JSONEq(t, `{}`, raw)
}

func TestCart_TotalUsesDiscountedPrice(t *testing.T) {
	ctx := context.Background()
	cart := newTestCart(t, newFakeStorage(), newFakeCatalog(0))

	require.NoError(t, cart.AddToCart(ctx, product(1, "100", "10"), 2))
	require.NoError(t, cart.AddToCart(ctx, product(2, "9.99", "0"), 1))

	total, err := cart.GetCartTotal(ctx)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("189.99")), total.String())

	lines, err := cart.Items(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.True(t, lines[0].UnitPrice.Equal(decimal.NewFromInt(90)))
	assert.True(t, lines[0].LineTotal.Equal(decimal.NewFromInt(180)))
}

func TestCart_PersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryLocalStorage()
	repo := newFakeCatalog(0)
	repo.byID[7] = product(7, "20", "50")

	first, err := NewCartUseCase(ctx, store, repo, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, first.AddToCart(ctx, product(7, "20", "50"), 3))

	second, err := NewCartUseCase(ctx, store, repo, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 3, second.GetCartCount())

	// the hydrated entry resolves through the catalog
	total, err := second.GetCartTotal(ctx)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(30)), total.String())
	assert.Equal(t, 1, repo.idCalls)

	_, err = second.GetCartTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.idCalls)
}

func TestCart_CorruptStorageStartsEmpty(t *testing.T) {
	for _, raw := range []string{
		`not json`,
		`[1, 2]`,
		`{"1": 0}`,
		`{"1": -3}`,
		`{"abc": 2}`,
		`{"0": 1}`,
	} {
		t.Run(raw, func(t *testing.T) {
			store := newFakeStorage()
			store.data[entity.CartStorageKey] = raw

			cart := newTestCart(t, store, newFakeCatalog(0))
			assert.Zero(t, cart.GetCartCount())
			_, ok := store.value(entity.CartStorageKey)
			assert.False(t, ok)
			assert.Equal(t, []string{entity.CartStorageKey}, store.removed)
		})
	}
}

func TestCart_WriteFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newFakeStorage()
	cart := newTestCart(t, store, newFakeCatalog(0))
	require.NoError(t, cart.AddToCart(ctx, product(1, "10", "0"), 2))

	store.failWrite = true
	assert.ErrorIs(t, cart.AddToCart(ctx, product(1, "10", "0"), 1), errWriteFailed)
	assert.ErrorIs(t, cart.AddToCart(ctx, product(2, "10", "0"), 1), errWriteFailed)
	assert.ErrorIs(t, cart.RemoveFromCart(ctx, 1), errWriteFailed)
	assert.ErrorIs(t, cart.ClearCart(ctx), errWriteFailed)

	assert.Equal(t, []entity.CartEntry{{ProductID: 1, Quantity: 2}}, cart.Entries())
}

func TestCart_UnresolvableProduct(t *testing.T) {
	ctx := context.Background()
	store := newFakeStorage()
	store.data[entity.CartStorageKey] = `{"99": 1}`
	cart := newTestCart(t, store, newFakeCatalog(0))

	_, err := cart.GetCartTotal(ctx)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}
