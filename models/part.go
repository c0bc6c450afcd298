package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Part is a spare part used on a repair order
type Part struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      uint            `gorm:"not null;index" json:"order_id"`
	Name         string          `gorm:"not null" json:"name"`
	SerialNumber string          `gorm:"not null" json:"serial_number"`
	Quantity     int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"` // unit price
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Part model
func (Part) TableName() string {
	return "parts"
}

// LineTotal is the unit price multiplied by quantity
func (p Part) LineTotal() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
