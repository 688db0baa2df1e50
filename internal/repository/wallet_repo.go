package repository

import (
	"context"
	"time"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WalletRepository interface {
	WithTx(tx *gorm.DB) WalletRepository
	// GetOrCreate returns the user's wallet, opening an empty one on first use.
	GetOrCreate(ctx context.Context, userID string) (*model.Wallet, error)
	// AddBalance applies delta in a single conditional statement and reports
	// false when the balance would go below zero.
	AddBalance(ctx context.Context, userID string, delta decimal.Decimal, updatedBy string) (bool, error)
	CreateTransaction(ctx context.Context, t *model.WalletTransaction) error
	FindTransactions(ctx context.Context, userID string, limit int) ([]model.WalletTransaction, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]model.WalletTransaction, error)
}

type walletRepo struct {
	db *gorm.DB
}

func NewWalletRepo(db *gorm.DB) WalletRepository {
	return &walletRepo{db}
}

func (r *walletRepo) WithTx(tx *gorm.DB) WalletRepository {
	return &walletRepo{tx}
}

func (r *walletRepo) GetOrCreate(ctx context.Context, userID string) (*model.Wallet, error) {
	var wallet model.Wallet
	err := r.db.WithContext(ctx).
		Where(model.Wallet{UserID: userID}).
		Attrs(model.Wallet{Balance: decimal.Zero}).
		FirstOrCreate(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *walletRepo) AddBalance(ctx context.Context, userID string, delta decimal.Decimal, updatedBy string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Wallet{}).Where("user_id = ?", userID)
	if delta.IsNegative() {
		q = q.Where("balance >= ?", delta.Neg())
	}
	res := q.Updates(map[string]interface{}{
		"balance":    gorm.Expr("balance + ?", delta),
		"updated_by": updatedBy,
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *walletRepo) CreateTransaction(ctx context.Context, t *model.WalletTransaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *walletRepo) FindTransactions(ctx context.Context, userID string, limit int) ([]model.WalletTransaction, error) {
	var txs []model.WalletTransaction
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&txs).Error
	return txs, err
}

func (r *walletRepo) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]model.WalletTransaction, error) {
	var txs []model.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&txs).Error
	return txs, err
}
