package service

import (
	"errors"
	"testing"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestAddToCartMergesLines(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	pancake := f.seedProduct(t, "Pancake", "50")
	latte := f.seedProduct(t, "Latte", "3.75")

	first, err := f.cart.AddItem(f.ctx, "customer-1", AddToCartRequest{ProductID: pancake.ID, Quantity: 2})
	require.NoError(t, err)
	require.Equal(t, "Pancake", first.ProductImageDescription)

	merged, err := f.cart.AddItem(f.ctx, "customer-1", AddToCartRequest{ProductID: pancake.ID, Quantity: 3})
	require.NoError(t, err)
	require.Equal(t, first.ID, merged.ID)
	require.Equal(t, 5, merged.Quantity)

	_, err = f.cart.AddItem(f.ctx, "customer-1", AddToCartRequest{ProductID: latte.ID, Quantity: 2})
	require.NoError(t, err)

	items, err := f.cart.ListItems(f.ctx, "customer-1")
	require.NoError(t, err)
	require.Len(t, items, 2)

	sum, err := f.cart.Summary(f.ctx, "customer-1")
	require.NoError(t, err)
	require.Equal(t, 2, sum.Items)
	require.Equal(t, 7, sum.Quantity)
	requireDecimal(t, "257.50", sum.Total)

	_, err = f.cart.AddItem(f.ctx, "customer-1", AddToCartRequest{ProductID: pancake.ID, Quantity: 996})
	require.ErrorIs(t, err, ErrValidation)
	_, err = f.cart.AddItem(f.ctx, "customer-1", AddToCartRequest{ProductID: uuid.New(), Quantity: 1})
	require.ErrorIs(t, err, ErrProductNotFound)

	require.NoError(t, f.db.Model(latte).Update("is_available", false).Error)
	_, err = f.cart.AddItem(f.ctx, "customer-1", AddToCartRequest{ProductID: latte.ID, Quantity: 1})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCartItemsBelongToTheirOwner(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	pancake := f.seedProduct(t, "Pancake", "50")
	item, err := f.cart.AddItem(f.ctx, "customer-1", AddToCartRequest{ProductID: pancake.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = f.cart.UpdateItem(f.ctx, "customer-2", item.ID, 4)
	require.ErrorIs(t, err, ErrCartItemNotFound)
	require.ErrorIs(t, f.cart.RemoveItem(f.ctx, "customer-2", item.ID), ErrCartItemNotFound)

	_, err = f.cart.UpdateItem(f.ctx, "customer-1", item.ID, 0)
	require.ErrorIs(t, err, ErrValidation)
	updated, err := f.cart.UpdateItem(f.ctx, "customer-1", item.ID, 4)
	require.NoError(t, err)
	require.Equal(t, 4, updated.Quantity)

	require.NoError(t, f.cart.RemoveItem(f.ctx, "customer-1", item.ID))
	cleared, err := f.cart.Clear(f.ctx, "customer-1")
	require.NoError(t, err)
	require.False(t, cleared)
}

func TestCheckoutPlacesOrdersAndClearsCart(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	pancake := f.seedProduct(t, "Pancake", "50")
	latte := f.seedProduct(t, "Latte", "3.75")
	_, err := f.cart.AddItem(f.ctx, "customer-1", AddToCartRequest{ProductID: pancake.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.cart.AddItem(f.ctx, "customer-1", AddToCartRequest{ProductID: latte.ID, Quantity: 2})
	require.NoError(t, err)

	// Checkout charges the catalog price, not the price seen when adding.
	require.NoError(t, f.db.Model(pancake).Update("price", dec("60")).Error)

	result, err := f.cart.Checkout(f.ctx, "customer-1", CheckoutRequest{Notes: "table 4"})
	require.NoError(t, err)
	require.Len(t, result.Orders, 2)
	require.Empty(t, result.Payments)
	requireDecimal(t, "127.50", result.Total)
	for _, o := range result.Orders {
		require.Equal(t, model.OrderPending, o.Status)
		require.Equal(t, "table 4", o.Notes)
		require.Equal(t, "customer-1", o.UserID)
	}

	mine, err := f.order.ListOrders(f.ctx, repository.OrderFilter{UserID: "customer-1"})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Len(t, f.pub.ofType(EventOrderUpdate), 2)

	items, err := f.cart.ListItems(f.ctx, "customer-1")
	require.NoError(t, err)
	require.Empty(t, items)

	_, err = f.cart.Checkout(f.ctx, "customer-1", CheckoutRequest{})
	require.ErrorIs(t, err, ErrCartEmpty)
}

func TestCheckoutPaysFromWallet(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	pancake := f.seedProduct(t, "Pancake", "50")
	latte := f.seedProduct(t, "Latte", "3.75")
	_, err := f.cart.AddItem(f.ctx, "customer-1", AddToCartRequest{ProductID: pancake.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.cart.AddItem(f.ctx, "customer-1", AddToCartRequest{ProductID: latte.ID, Quantity: 2})
	require.NoError(t, err)
	f.topUp(t, "customer-1", "200")

	result, err := f.cart.Checkout(f.ctx, "customer-1", CheckoutRequest{PayWithWallet: true})
	require.NoError(t, err)
	require.Len(t, result.Payments, 2)
	for _, o := range result.Orders {
		require.Equal(t, model.OrderPaid, o.Status)
	}
	requireDecimal(t, "92.50", f.balanceOf(t, "customer-1"))
	require.Len(t, f.pub.ofType(EventWallet), 3)
}

func TestCheckoutRollsBackWhenWalletIsShort(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	pancake := f.seedProduct(t, "Pancake", "50")
	latte := f.seedProduct(t, "Latte", "3.75")
	_, err := f.cart.AddItem(f.ctx, "customer-1", AddToCartRequest{ProductID: pancake.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.cart.AddItem(f.ctx, "customer-1", AddToCartRequest{ProductID: latte.ID, Quantity: 2})
	require.NoError(t, err)
	f.topUp(t, "customer-1", "100")

	_, err = f.cart.Checkout(f.ctx, "customer-1", CheckoutRequest{PayWithWallet: true})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	mine, err := f.order.ListOrders(f.ctx, repository.OrderFilter{UserID: "customer-1"})
	require.NoError(t, err)
	require.Empty(t, mine)
	items, err := f.cart.ListItems(f.ctx, "customer-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	requireDecimal(t, "100", f.balanceOf(t, "customer-1"))
	require.Empty(t, f.pub.ofType(EventOrderUpdate))
}

func TestCheckoutRollsBackOnStorageFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	pancake := f.seedProduct(t, "Pancake", "50")
	latte := f.seedProduct(t, "Latte", "3.75")
	_, err := f.cart.AddItem(f.ctx, "customer-1", AddToCartRequest{ProductID: pancake.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.cart.AddItem(f.ctx, "customer-1", AddToCartRequest{ProductID: latte.ID, Quantity: 1})
	require.NoError(t, err)

	errDisk := errors.New("disk full")
	testutil.FailNthCreate(t, f.db, "orders", 2, errDisk)

	_, err = f.cart.Checkout(f.ctx, "customer-1", CheckoutRequest{})
	require.ErrorIs(t, err, errDisk)

	mine, err := f.order.ListOrders(f.ctx, repository.OrderFilter{UserID: "customer-1"})
	require.NoError(t, err)
	require.Empty(t, mine)
	items, err := f.cart.ListItems(f.ctx, "customer-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
}
