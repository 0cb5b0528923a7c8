package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/service"
)

func TestAddToCart_IncrementsExistingLine(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice", "pw")
	p := e.product(t, "Widget", 2.5, 10)

	_, err := e.Cart.AddToCart(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)
	line, err := e.Cart.AddToCart(ctx, u.ID, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)

	cart, err := e.Cart.GetCart(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 5, cart[0].Quantity)

	assert.Equal(t, []string{"cart_item_added", "cart_item_added"}, e.Events.Types(service.TopicCart))
}

func TestAddToCart_Errors(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice", "pw")
	p := e.product(t, "Widget", 1, 1)

	_, err := e.Cart.AddToCart(ctx, 999, p.ID, 1)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = e.Cart.AddToCart(ctx, u.ID, 999, 1)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = e.Cart.AddToCart(ctx, u.ID, p.ID, 0)
	assert.ErrorIs(t, err, service.ErrValidation)

	cart, err := e.Cart.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestRemoveFromCart(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice", "pw")
	p := e.product(t, "Widget", 1, 5)
	_, err := e.Cart.AddToCart(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)

	line, err := e.Cart.RemoveFromCart(ctx, u.ID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, 1, line.Quantity)

	line, err = e.Cart.RemoveFromCart(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.Nil(t, line)

	_, err = e.Cart.RemoveFromCart(ctx, u.ID, p.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCheckout(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice", "pw")
	widget := e.product(t, "Widget", 2, 5)
	gadget := e.product(t, "Gadget", 10, 1)

	_, err := e.Cart.AddToCart(ctx, u.ID, widget.ID, 3)
	require.NoError(t, err)
	_, err = e.Cart.AddToCart(ctx, u.ID, gadget.ID, 1)
	require.NoError(t, err)

	res, err := e.Cart.Checkout(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, res.Purchases, 2)
	assert.Equal(t, 16.0, res.Total)
	for _, p := range res.Purchases {
		assert.True(t, p.PurchasedAt.Equal(e.Clock.Now()))
	}

	cart, err := e.Cart.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	got, err := e.Catalog.GetProduct(ctx, widget.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)

	history, err := e.Cart.ListPurchases(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, err = e.Cart.Checkout(ctx, u.ID)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestCheckout_InsufficientStockRollsBack(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice", "pw")
	plenty := e.product(t, "Plenty", 1, 10)
	scarce := e.product(t, "Scarce", 1, 1)

	_, err := e.Cart.AddToCart(ctx, u.ID, plenty.ID, 2)
	require.NoError(t, err)
	_, err = e.Cart.AddToCart(ctx, u.ID, scarce.ID, 2)
	require.NoError(t, err)

	_, err = e.Cart.Checkout(ctx, u.ID)
	require.ErrorIs(t, err, service.ErrValidation)
	assert.ErrorContains(t, err, "Scarce")

	got, err := e.Catalog.GetProduct(ctx, plenty.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)

	cart, err := e.Cart.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, cart, 2)

	history, err := e.Cart.ListPurchases(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestCheckout_ReindexesPurchasedProducts(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice", "pw")
	widget := e.product(t, "Widget", 2, 5)
	e.product(t, "Untouched", 3, 9)

	idx := &fakeSearch{}
	e.Cart.Search = idx

	_, err := e.Cart.AddToCart(ctx, u.ID, widget.ID, 3)
	require.NoError(t, err)
	_, err = e.Cart.Checkout(ctx, u.ID)
	require.NoError(t, err)

	assert.Equal(t, []uint{widget.ID}, idx.indexed)
	assert.Equal(t, 2, idx.docs[widget.ID].Stock)
}
