package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is a line in a customer's cart. Product details are copied when
// the line is added so the cart renders without joining products.
type CartItem struct {
	BaseModel
	UserID                  string          `gorm:"type:varchar(255);not null;index" json:"user_id"`
	ProductID               uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName             string          `gorm:"type:varchar(255);not null" json:"product_name"`
	ProductImageURL         string          `gorm:"type:varchar(500)" json:"product_image_url"`
	ProductImageDescription string          `gorm:"type:varchar(500)" json:"product_image_description"`
	Price                   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity                int             `gorm:"not null;default:1" json:"quantity"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

func (c *CartItem) LineTotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
