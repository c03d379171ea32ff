package model

import (
	"fmt"
	"time"
)

// SubstationCode is one of the fixed site codes a substation may carry.
type SubstationCode string

const (
	SubstationRP4 SubstationCode = "РП-4"
	SubstationRP5 SubstationCode = "РП-5"
	SubstationRP6 SubstationCode = "РП-6"
	SubstationRP7 SubstationCode = "РП-7"
	SubstationRP8 SubstationCode = "РП-8"
)

// SubstationCodes lists the known site codes.
var SubstationCodes = []SubstationCode{
	SubstationRP4, SubstationRP5, SubstationRP6, SubstationRP7, SubstationRP8,
}

// Valid reports whether c is a known site code.
func (c SubstationCode) Valid() bool {
	switch c {
	case SubstationRP4, SubstationRP5, SubstationRP6, SubstationRP7, SubstationRP8:
		return true
	}
	return false
}

// Label returns the latin display name of the site.
func (c SubstationCode) Label() string {
	switch c {
	case SubstationRP4:
		return "Substation-4"
	case SubstationRP5:
		return "Substation-5"
	case SubstationRP6:
		return "Substation-6"
	case SubstationRP7:
		return "Substation-7"
	case SubstationRP8:
		return "Substation-8"
	}
	return "Unknown"
}

// Slug returns the default URL slug for the site code.
func (c SubstationCode) Slug() string {
	switch c {
	case SubstationRP4:
		return "rp-4"
	case SubstationRP5:
		return "rp-5"
	case SubstationRP6:
		return "rp-6"
	case SubstationRP7:
		return "rp-7"
	case SubstationRP8:
		return "rp-8"
	}
	return ""
}

// ParseSubstationCode accepts either the site code itself or its latin slug.
func ParseSubstationCode(s string) (SubstationCode, error) {
	for _, c := range SubstationCodes {
		if string(c) == s || c.Slug() == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown substation code %q", s)
}

// Substation is the top of the facility hierarchy.
type Substation struct {
	ID        int64          `gorm:"primaryKey" json:"id"`
	Title     SubstationCode `gorm:"size:10;not null" json:"title"`
	Slug      string         `gorm:"uniqueIndex;size:64;not null" json:"slug"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`

	// Associations
	MCCs []MotorControlCenter `gorm:"foreignKey:SubstationID;constraint:OnDelete:CASCADE" json:"mccs,omitempty"`
}

// MotorControlCenter groups the nodes fed from one MCC cabinet.
type MotorControlCenter struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:64;not null" json:"title"`
	Slug         string    `gorm:"uniqueIndex;size:64;not null" json:"slug"`
	SubstationID int64     `gorm:"index;not null" json:"substation_id"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`

	// Associations
	Substation *Substation `gorm:"constraint:OnDelete:CASCADE" json:"substation,omitempty"`
	Nodes      []Node      `gorm:"foreignKey:MCCID;constraint:OnDelete:CASCADE" json:"nodes,omitempty"`
}

// TableName pins the table name independent of gorm's pluralizer.
func (MotorControlCenter) TableName() string {
	return "motor_control_centers"
}
