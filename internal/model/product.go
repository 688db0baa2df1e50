package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a menu item offered to customers. Orders copy its name, image
// and price at placement time instead of keeping a foreign key.
type Product struct {
	BaseModel
	Name             string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_products_name_active,where:deleted_at IS NULL" json:"name" validate:"required,max=255"`
	Description      string          `gorm:"type:text" json:"description"`
	Category         string          `gorm:"type:varchar(50)" json:"category"`
	ImageURL         string          `gorm:"type:varchar(500)" json:"image_url"`
	ImageDescription string          `gorm:"type:varchar(500)" json:"image_description"`
	Price            decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price" validate:"decimal_gte0"`
	IsAvailable      bool            `gorm:"default:true" json:"is_available"`

	Ingredients []Ingredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredients,omitempty" validate:"dive"`
}

func (Product) TableName() string {
	return "products"
}

// Ingredient is one line of a product recipe: how much of a stock item a single
// unit of the product consumes. StockID, when set, pins the ingredient to a
// stock record and bypasses name matching.
type Ingredient struct {
	BaseModel
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Name      string          `gorm:"type:varchar(100);not null" json:"name" validate:"required,max=100"`
	Quantity  decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity" validate:"decimal_gt0"`
	Unit      string          `gorm:"type:varchar(20);not null;default:'g'" json:"unit" validate:"required,max=20"`
	Notes     string          `gorm:"type:varchar(255)" json:"notes,omitempty"`
	StockID   *uuid.UUID      `gorm:"type:uuid;index" json:"stock_id,omitempty"`
}

func (Ingredient) TableName() string {
	return "product_ingredients"
}

// RequiredFor scales the per-unit quantity by the ordered quantity.
func (i *Ingredient) RequiredFor(orderQuantity int) decimal.Decimal {
	return i.Quantity.Mul(decimal.NewFromInt(int64(orderQuantity)))
}
