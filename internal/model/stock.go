package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SystemActor is recorded as UpdatedBy/ChangedBy for automatic deductions.
const SystemActor = "System"

const (
	ReasonInitialStock = "Initial Stock Creation"
	ReasonManualUpdate = "Manual Update"
	ReasonAdjustment   = "Quantity Adjustment"
)

// Stock is an inventory record tracked by free-text name. UpdatedAt and
// UpdatedBy double as the last-updated timestamp and actor.
type Stock struct {
	BaseModel
	Name      string          `gorm:"type:varchar(100);not null;index" json:"name" validate:"required,max=100"`
	Category  string          `gorm:"type:varchar(50);not null;default:''" json:"category" validate:"max=50"`
	Quantity  decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"quantity" validate:"decimal_gte0"`
	Unit      string          `gorm:"type:varchar(20);not null" json:"unit" validate:"required,max=20"`
	Threshold decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"threshold" validate:"decimal_gte0"`
	Notes     string          `gorm:"type:text" json:"notes,omitempty"`
}

func (Stock) TableName() string {
	return "stocks"
}

// IsLow reports whether the quantity is at or below the low-stock threshold.
func (s *Stock) IsLow() bool {
	return s.Quantity.LessThanOrEqual(s.Threshold)
}

// StockHistory is an append-only record of a stock quantity change.
type StockHistory struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	StockID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"stock_id"`
	PreviousQuantity decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"previous_quantity"`
	NewQuantity      decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"new_quantity"`
	Reason           string          `gorm:"type:varchar(100);not null" json:"reason"`
	ChangedBy        string          `gorm:"type:varchar(255)" json:"changed_by"`
	ChangedAt        time.Time       `gorm:"not null;index" json:"changed_at"`
	Notes            string          `gorm:"type:text" json:"notes,omitempty"`
}

func (StockHistory) TableName() string {
	return "stock_histories"
}

// Delta is the signed change recorded by the entry.
func (h *StockHistory) Delta() decimal.Decimal {
	return h.NewQuantity.Sub(h.PreviousQuantity)
}

func (h *StockHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.ChangedAt.IsZero() {
		h.ChangedAt = time.Now()
	}
	return nil
}
