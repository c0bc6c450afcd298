package models

import (
	"math"
	"time"
)

// OrderStatus is the lifecycle state of a repair order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusCompleted OrderStatus = "completed"
)

// ParseOrderStatus converts a raw status value into an OrderStatus.
// The second return value is false for anything outside the closed set.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusPending, StatusConfirmed, StatusCompleted:
		return OrderStatus(s), true
	}
	return "", false
}

// PaymentStatus tracks whether an order has been paid for
type PaymentStatus int8

const (
	PaymentUnpaid   PaymentStatus = 0
	PaymentPaid     PaymentStatus = 1
	PaymentReserved PaymentStatus = 2
)

// Valid reports whether the payment status is one of the known values
func (p PaymentStatus) Valid() bool {
	return p >= PaymentUnpaid && p <= PaymentReserved
}

// ParsePaymentStatus converts a raw payment value into a PaymentStatus.
// Values outside the int8 range are rejected before the conversion.
func ParsePaymentStatus(v int) (PaymentStatus, bool) {
	if v < math.MinInt8 || v > math.MaxInt8 {
		return 0, false
	}
	p := PaymentStatus(v)
	return p, p.Valid()
}

// Order represents a single repair reservation / work ticket
type Order struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	StartDate     time.Time         `gorm:"not null;index" json:"start_date"`
	Status        OrderStatus       `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentStatus PaymentStatus     `gorm:"not null;default:0" json:"payment_status"`
	Comment       *string           `json:"comment"`
	InvoiceKey    *string           `json:"invoice_key"`  // nullable, set when the order is completed
	ProtocolKey   *string           `json:"protocol_key"` // nullable, set when the handover protocol document is generated
	ClientID      uint              `gorm:"not null;index" json:"client_id"`
	Client        *Client           `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	VehicleID     uint              `gorm:"not null;index" json:"vehicle_id"`
	Vehicle       *Vehicle          `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	EmployeeID    *uint             `gorm:"index" json:"employee_id"` // nullable, assigned after creation
	Employee      *Employee         `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Services      []Service         `gorm:"many2many:order_services;" json:"services"`
	Parts         []Part            `gorm:"foreignKey:OrderID" json:"parts"`
	Protocol      *HandoverProtocol `gorm:"foreignKey:OrderID" json:"protocol,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsResolved reports whether the order is both completed and paid
func (o *Order) IsResolved() bool {
	return o.Status == StatusCompleted && o.PaymentStatus == PaymentPaid
}

// IsAssignedTo reports whether the order is assigned to the given employee
func (o *Order) IsAssignedTo(employeeID uint) bool {
	return o.EmployeeID != nil && *o.EmployeeID == employeeID
}
