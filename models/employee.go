package models

import (
	"time"

	"gorm.io/gorm"
)

// Employee represents a workshop staff member. Managers are employees with
// IsManager set; they cannot be assigned to repair orders.
type Employee struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Auth0ID     string         `gorm:"uniqueIndex;not null" json:"auth0_id"`
	FirstName   string         `gorm:"not null" json:"first_name"`
	LastName    string         `gorm:"not null" json:"last_name"`
	Email       string         `gorm:"uniqueIndex;not null" json:"email"`
	PhoneNumber string         `json:"phone_number"`
	IsManager   bool           `gorm:"not null;default:false" json:"is_manager"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Employee model
func (Employee) TableName() string {
	return "employees"
}

// FullName joins first and last name
func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}
