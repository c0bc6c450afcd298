package models

import (
	"time"

	"gorm.io/gorm"
)

// Client represents a workshop customer who owns vehicles and books repairs
type Client struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Auth0ID     string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	FirstName   string         `gorm:"not null" json:"first_name"`
	LastName    string         `gorm:"not null" json:"last_name"`
	Email       string         `gorm:"uniqueIndex;not null" json:"email"`
	PhoneNumber string         `json:"phone_number"`
	Vehicles    []Vehicle      `gorm:"foreignKey:ClientID" json:"vehicles,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Client model
func (Client) TableName() string {
	return "clients"
}

// FullName joins first and last name
func (c Client) FullName() string {
	return c.FirstName + " " + c.LastName
}
