package models

import (
	"time"

	"gorm.io/gorm"
)

// Vehicle represents a client's car
type Vehicle struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Brand              string         `gorm:"not null" json:"brand"`
	Model              string         `gorm:"not null" json:"model"`
	ProductionYear     int            `json:"production_year"`
	VIN                string         `gorm:"column:vin;uniqueIndex;not null" json:"vin"`
	RegistrationNumber string         `gorm:"uniqueIndex;not null" json:"registration_number"`
	ClientID           uint           `gorm:"not null;index" json:"client_id"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Vehicle model
func (Vehicle) TableName() string {
	return "vehicles"
}
