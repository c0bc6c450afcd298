package models

import (
	"time"
)

// HandoverProtocol documents the vehicle condition when it is handed over
type HandoverProtocol struct {
	OrderID     uint            `gorm:"primaryKey;autoIncrement:false" json:"order_id"`
	Description *string         `json:"description"`
	Photos      []ProtocolPhoto `gorm:"foreignKey:OrderID;references:OrderID" json:"photos"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the HandoverProtocol model
func (HandoverProtocol) TableName() string {
	return "handover_protocols"
}

// ProtocolPhoto is a photo attached to a handover protocol
type ProtocolPhoto struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	S3Key     string    `gorm:"not null" json:"s3_key"`
	URL       *string   `gorm:"-" json:"url,omitempty"` // computed field, presigned URL
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the ProtocolPhoto model
func (ProtocolPhoto) TableName() string {
	return "protocol_photos"
}
