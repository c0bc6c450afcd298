package models

import (
	"github.com/shopspring/decimal"
)

// Service is a bookable repair operation. Services are reference data and
// are never modified by the scheduling code.
type Service struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null;uniqueIndex" json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	RepairTime  int             `gorm:"not null;check:repair_time >= 0" json:"repair_time"` // minutes
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}
