package repository

import (
	"context"
	"time"

	"go-pos-ws/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardStats untuk overview stats
type DashboardStats struct {
	TotalProducts    int64                       `json:"total_products"`
	TotalStocks      int64                       `json:"total_stocks"`
	LowStockCount    int64                       `json:"low_stock_count"`
	NewOrders        int64                       `json:"new_orders"`
	AwaitingDiscount int64                       `json:"awaiting_discount"`
	OrdersByStatus   map[model.OrderStatus]int64 `json:"orders_by_status"`
	Revenue          decimal.Decimal             `json:"revenue"`
}

type DashboardRepository interface {
	GetDashboardStats(ctx context.Context, since time.Time) (*DashboardStats, error)
}

type dashboardRepo struct {
	db     *gorm.DB
	orders OrderRepository
}

func NewDashboardRepo(db *gorm.DB) DashboardRepository {
	return &dashboardRepo{db: db, orders: NewOrderRepo(db)}
}

// GetDashboardStats counts catalog and stock records and sums completed
// order revenue since the given time.
func (r *dashboardRepo) GetDashboardStats(ctx context.Context, since time.Time) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Stock{}).Count(&stats.TotalStocks).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Stock{}).Where("quantity <= threshold").Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Order{}).
		Where("status = ? AND assigned_to_employee_id IS NULL", model.OrderPending).
		Count(&stats.NewOrders).Error; err != nil {
		return nil, err
	}

	counts, err := r.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stats.OrdersByStatus = counts
	stats.AwaitingDiscount = counts[model.OrderAwaitingDiscountApproval]

	var revenue decimal.NullDecimal
	err = db.Model(&model.Order{}).
		Select("SUM(total_price)").
		Where("status = ? AND updated_at >= ?", model.OrderCompleted, since).
		Row().Scan(&revenue)
	if err != nil {
		return nil, err
	}
	stats.Revenue = revenue.Decimal

	return &stats, nil
}
