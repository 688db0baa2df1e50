package repository

import (
	"context"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderFilter narrows order listings. Zero values mean "any".
type OrderFilter struct {
	UserID     string
	EmployeeID string
	Statuses   []model.OrderStatus
	Unassigned bool
	Limit      int
}

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]model.Order, error)
	// UpdateIfStatus writes every mutable column of order, but only while the
	// stored status still equals expected. It reports whether a row changed.
	UpdateIfStatus(ctx context.Context, order *model.Order, expected model.OrderStatus) (bool, error)
	CountByStatus(ctx context.Context) (map[model.OrderStatus]int64, error)
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepo{tx}
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) FindAll(ctx context.Context, filter OrderFilter) ([]model.Order, error) {
	var orders []model.Order
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.EmployeeID != "" {
		q = q.Where("assigned_to_employee_id = ?", filter.EmployeeID)
	}
	if filter.Unassigned {
		q = q.Where("assigned_to_employee_id IS NULL")
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	err := q.Find(&orders).Error
	return orders, err
}

func (r *orderRepo) UpdateIfStatus(ctx context.Context, order *model.Order, expected model.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(order).
		Where("status = ?", expected).
		Select("*").
		Omit("id", "created_at", "created_by", "deleted_at", "deleted_by").
		Updates(order)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *orderRepo) CountByStatus(ctx context.Context) (map[model.OrderStatus]int64, error) {
	type row struct {
		Status model.OrderStatus
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[model.OrderStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
