package repository

import (
	"context"
	"time"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StockHistoryRepository interface {
	WithTx(tx *gorm.DB) StockHistoryRepository
	Create(ctx context.Context, entry *model.StockHistory) error
	FindByStock(ctx context.Context, stockID uuid.UUID) ([]model.StockHistory, error)
	CountByStock(ctx context.Context, stockID uuid.UUID) (int64, error)
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
}

// StockMovementData untuk chart data
type StockMovementData struct {
	Date     string          `json:"date"`
	Inbound  decimal.Decimal `json:"inbound"`
	Outbound decimal.Decimal `json:"outbound"`
}

type stockHistoryRepo struct {
	db *gorm.DB
}

func NewStockHistoryRepo(db *gorm.DB) StockHistoryRepository {
	return &stockHistoryRepo{db}
}

func (r *stockHistoryRepo) WithTx(tx *gorm.DB) StockHistoryRepository {
	return &stockHistoryRepo{tx}
}

func (r *stockHistoryRepo) Create(ctx context.Context, entry *model.StockHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *stockHistoryRepo) FindByStock(ctx context.Context, stockID uuid.UUID) ([]model.StockHistory, error) {
	var entries []model.StockHistory
	err := r.db.WithContext(ctx).
		Where("stock_id = ?", stockID).
		Order("changed_at DESC").
		Find(&entries).Error
	return entries, err
}

func (r *stockHistoryRepo) CountByStock(ctx context.Context, stockID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.StockHistory{}).Where("stock_id = ?", stockID).Count(&count).Error
	return count, err
}

// GetStockMovement sums increases and decreases per day.
func (r *stockHistoryRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	rows, err := r.db.WithContext(ctx).Model(&model.StockHistory{}).
		Select(`
			DATE(changed_at) as date,
			COALESCE(SUM(CASE WHEN new_quantity > previous_quantity THEN new_quantity - previous_quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN new_quantity < previous_quantity THEN previous_quantity - new_quantity ELSE 0 END), 0) as outbound
		`).
		Where("changed_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(changed_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, rows.Err()
}
