package service

import (
	"testing"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"

	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := NewDashboardService(f.history, repository.NewDashboardRepo(f.db))

	f.seedStock(t, "Flour", "5000", "g", "100")
	f.seedStock(t, "Sugar", "50", "g", "100")
	f.seedProduct(t, "Pancake", "50", ingredient("Flour", "200", "g"))

	done := f.seedOrder(t, "Pancake", "50", 3)
	_, _, err := f.order.CompleteOrder(f.ctx, done.ID, "employee-1")
	require.NoError(t, err)

	f.seedOrder(t, "Pancake", "50", 1)
	waiting := f.seedOrder(t, "Pancake", "50", 1)
	_, err = f.order.RequestDiscount(f.ctx, waiting.ID, "PWD", "customer-1")
	require.NoError(t, err)

	stats, err := svc.GetDashboardStats(f.ctx, 30)
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.TotalProducts)
	require.EqualValues(t, 2, stats.TotalStocks)
	require.EqualValues(t, 1, stats.LowStockCount)
	require.EqualValues(t, 1, stats.NewOrders)
	require.EqualValues(t, 1, stats.AwaitingDiscount)
	require.EqualValues(t, 1, stats.OrdersByStatus[model.OrderCompleted])
	requireDecimal(t, "150", stats.Revenue)
}
