package service

import (
	"testing"

	"go-pos-ws/internal/model"

	"github.com/stretchr/testify/require"
)

func TestTopUpRecordsLedger(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	requireDecimal(t, "0", f.balanceOf(t, "customer-1"))

	f.topUp(t, "customer-1", "100")
	entry, err := f.wallet.TopUp(f.ctx, "customer-1", TopUpRequest{Amount: dec("50.25"), Description: "Cash at counter"}, "cashier-1")
	require.NoError(t, err)
	require.Equal(t, model.WalletTopUp, entry.Type)
	requireDecimal(t, "100", entry.PreviousBalance)
	requireDecimal(t, "150.25", entry.NewBalance)
	require.Len(t, entry.Reference, 8)
	requireDecimal(t, "150.25", f.balanceOf(t, "customer-1"))

	history, err := f.wallet.History(f.ctx, "customer-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "Cash at counter", history[0].Description)
	require.Equal(t, "Wallet top-up", history[1].Description)

	_, err = f.wallet.TopUp(f.ctx, "customer-1", TopUpRequest{Amount: dec("0")}, "cashier-1")
	require.ErrorIs(t, err, ErrValidation)
	_, err = f.wallet.TopUp(f.ctx, "customer-1", TopUpRequest{Amount: dec("-5")}, "cashier-1")
	require.ErrorIs(t, err, ErrValidation)

	require.Len(t, f.pub.ofType(EventWallet), 2)
}

func TestPayWithWalletAndRefundOnCancel(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	product := f.seedProduct(t, "Pancake", "50")
	order, err := f.order.PlaceOrder(f.ctx, PlaceOrderRequest{ProductID: product.ID, Quantity: 2}, "customer-1")
	require.NoError(t, err)
	f.topUp(t, "customer-1", "150")

	paid, charge, err := f.order.PayWithWallet(f.ctx, order.ID, "customer-1")
	require.NoError(t, err)
	require.Equal(t, model.OrderPaid, paid.Status)
	require.Equal(t, model.WalletPayment, charge.Type)
	requireDecimal(t, "-100", charge.Amount)
	requireDecimal(t, "150", charge.PreviousBalance)
	requireDecimal(t, "50", charge.NewBalance)
	require.Equal(t, order.ID, *charge.OrderID)
	requireDecimal(t, "50", f.balanceOf(t, "customer-1"))

	cancelled, err := f.order.CancelOrder(f.ctx, order.ID, "customer-1")
	require.NoError(t, err)
	require.Equal(t, model.OrderCancelled, cancelled.Status)
	requireDecimal(t, "150", f.balanceOf(t, "customer-1"))

	entries, err := f.wallets.FindByOrder(f.ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, model.WalletRefund, entries[1].Type)
	requireDecimal(t, "100", entries[1].Amount)

	_, err = f.order.CancelOrder(f.ctx, order.ID, "customer-1")
	require.ErrorIs(t, err, ErrInvalidTransition)
	requireDecimal(t, "150", f.balanceOf(t, "customer-1"))
}

func TestPayWithWalletInsufficientFunds(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	order := f.seedOrder(t, "Family Meal", "100", 1)
	f.topUp(t, "customer-1", "30")

	_, _, err := f.order.PayWithWallet(f.ctx, order.ID, "customer-1")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	stored, err := f.order.GetOrder(f.ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, model.OrderPending, stored.Status)
	requireDecimal(t, "30", f.balanceOf(t, "customer-1"))

	entries, err := f.wallets.FindByOrder(f.ctx, order.ID)
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Empty(t, f.pub.ofType(EventOrderUpdate))
}

func TestCancelCashPaidOrderLeavesWalletAlone(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	order := f.seedOrder(t, "Latte", "4", 1)
	f.topUp(t, "customer-1", "10")

	_, err := f.order.MarkPaid(f.ctx, order.ID, "cashier-1")
	require.NoError(t, err)
	_, err = f.order.CancelOrder(f.ctx, order.ID, "cashier-1")
	require.NoError(t, err)

	requireDecimal(t, "10", f.balanceOf(t, "customer-1"))
	history, err := f.wallet.History(f.ctx, "customer-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestPayWithWalletDisabled(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	order := f.seedOrder(t, "Latte", "4", 1)
	plain := NewOrderService(f.db, f.orders, f.products, f.stock, f.pub, nil, dec("20"))

	_, _, err := plain.PayWithWallet(f.ctx, order.ID, "customer-1")
	require.ErrorIs(t, err, ErrWalletUnavailable)
}
