package repository

import (
	"context"
	"time"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StockRepository interface {
	WithTx(tx *gorm.DB) StockRepository
	Create(ctx context.Context, stock *model.Stock) error
	FindAll(ctx context.Context, category string) ([]model.Stock, error)
	FindLow(ctx context.Context) ([]model.Stock, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Stock, error)
	Update(ctx context.Context, stock *model.Stock) error
	// AddQuantity applies delta in a single conditional statement and reports
	// false when the result would go below zero.
	AddQuantity(ctx context.Context, id uuid.UUID, delta decimal.Decimal, updatedBy, notes string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error
}

type stockRepo struct {
	db *gorm.DB
}

func NewStockRepo(db *gorm.DB) StockRepository {
	return &stockRepo{db}
}

func (r *stockRepo) WithTx(tx *gorm.DB) StockRepository {
	return &stockRepo{tx}
}

func (r *stockRepo) Create(ctx context.Context, stock *model.Stock) error {
	return r.db.WithContext(ctx).Create(stock).Error
}

func (r *stockRepo) FindAll(ctx context.Context, category string) ([]model.Stock, error) {
	var stocks []model.Stock
	q := r.db.WithContext(ctx).Order("category ASC").Order("name ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Find(&stocks).Error
	return stocks, err
}

func (r *stockRepo) FindLow(ctx context.Context) ([]model.Stock, error) {
	var stocks []model.Stock
	err := r.db.WithContext(ctx).
		Where("quantity <= threshold").
		Order("quantity ASC").
		Find(&stocks).Error
	return stocks, err
}

func (r *stockRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Stock, error) {
	var stock model.Stock
	if err := r.db.WithContext(ctx).First(&stock, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *stockRepo) Update(ctx context.Context, stock *model.Stock) error {
	return r.db.WithContext(ctx).Save(stock).Error
}

func (r *stockRepo) AddQuantity(ctx context.Context, id uuid.UUID, delta decimal.Decimal, updatedBy, notes string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Stock{}).Where("id = ?", id)
	if delta.IsNegative() {
		q = q.Where("quantity >= ?", delta.Neg())
	}
	res := q.Updates(map[string]interface{}{
		"quantity":   gorm.Expr("quantity + ?", delta),
		"updated_by": updatedBy,
		"updated_at": time.Now(),
		"notes":      notes,
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *stockRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Stock{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Stock{}, "id = ?", id).Error
	})
}
