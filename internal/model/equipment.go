package model

import "time"

// NodeMotor describes a motor that may be fitted to one or more nodes.
type NodeMotor struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	Power      float64   `gorm:"not null;index" json:"power"` // kW
	RPM        int       `gorm:"column:rpm;not null" json:"rpm"`
	Connection string    `gorm:"size:32" json:"connection"`
	Amperage   float64   `gorm:"not null" json:"amperage"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

// Node is a physical equipment point within an MCC. Index is the
// human-entered lookup key.
type Node struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Index     string    `gorm:"column:node_index;uniqueIndex;size:64;not null" json:"index"`
	Level     int       `gorm:"not null" json:"level"`
	MotorID   *int64    `gorm:"index" json:"motor_id"`
	MCCID     int64     `gorm:"column:mcc_id;index;not null" json:"mcc_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	// Associations
	Motor *NodeMotor          `gorm:"constraint:OnDelete:RESTRICT" json:"motor,omitempty"`
	MCC   *MotorControlCenter `gorm:"foreignKey:MCCID;constraint:OnDelete:CASCADE" json:"mcc,omitempty"`
}
