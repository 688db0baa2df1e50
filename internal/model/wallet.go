package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WalletTransactionType string

const (
	WalletTopUp   WalletTransactionType = "TopUp"
	WalletPayment WalletTransactionType = "Payment"
	WalletRefund  WalletTransactionType = "Refund"
)

// Wallet holds a user's prepaid balance. The balance only changes together
// with a WalletTransaction row.
type Wallet struct {
	BaseModel
	UserID  string          `gorm:"type:varchar(255);not null;uniqueIndex" json:"user_id"`
	Balance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"balance"`
}

func (Wallet) TableName() string {
	return "wallets"
}

// WalletTransaction is an append-only balance movement. Amount is signed:
// payments are negative, top-ups and refunds positive.
type WalletTransaction struct {
	ID              uuid.UUID             `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string                `gorm:"type:varchar(255);not null;index" json:"user_id"`
	Type            WalletTransactionType `gorm:"type:varchar(16);not null" json:"type"`
	Amount          decimal.Decimal       `gorm:"type:decimal(18,2);not null" json:"amount"`
	PreviousBalance decimal.Decimal       `gorm:"type:decimal(18,2);not null" json:"previous_balance"`
	NewBalance      decimal.Decimal       `gorm:"type:decimal(18,2);not null" json:"new_balance"`
	OrderID         *uuid.UUID            `gorm:"type:uuid;index" json:"order_id,omitempty"`
	Reference       string                `gorm:"type:varchar(50)" json:"reference"`
	Description     string                `gorm:"type:varchar(255)" json:"description"`
	CreatedBy       string                `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt       time.Time             `gorm:"not null;index" json:"created_at"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}

func (t *WalletTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Reference == "" {
		t.Reference = t.ID.String()[:8]
	}
	return nil
}
