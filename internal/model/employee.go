package model

import (
	"fmt"
	"time"
)

// Role is the job role of an employee.
type Role string

const (
	RoleEngineer    Role = "Engineer"
	RoleElectrician Role = "Electrician"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEngineer, RoleElectrician:
		return true
	}
	return false
}

// Label returns the human-readable role name.
func (r Role) Label() string {
	switch r {
	case RoleEngineer:
		return "Engineer"
	case RoleElectrician:
		return "Electrician"
	}
	return "Unknown"
}

// ParseRole converts user input into a Role. An empty string yields the
// default role.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RoleElectrician, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// ClearanceGroup is the electrical-safety clearance level of an employee.
// Levels are ordered: a higher value permits more work.
type ClearanceGroup int

const (
	ClearanceNone ClearanceGroup = iota
	ClearanceI
	ClearanceII
	ClearanceIII
	ClearanceIVUpTo1kV
	ClearanceIVAbove1kV
	ClearanceV
)

// ClearanceGroups lists every assignable level in ascending order.
var ClearanceGroups = []ClearanceGroup{
	ClearanceI,
	ClearanceII,
	ClearanceIII,
	ClearanceIVUpTo1kV,
	ClearanceIVAbove1kV,
	ClearanceV,
}

// Valid reports whether g is a known level (including "none").
func (g ClearanceGroup) Valid() bool {
	switch g {
	case ClearanceNone, ClearanceI, ClearanceII, ClearanceIII,
		ClearanceIVUpTo1kV, ClearanceIVAbove1kV, ClearanceV:
		return true
	}
	return false
}

// Code is the short, stable identifier used in JSON and forms.
func (g ClearanceGroup) Code() string {
	switch g {
	case ClearanceNone:
		return ""
	case ClearanceI:
		return "I"
	case ClearanceII:
		return "II"
	case ClearanceIII:
		return "III"
	case ClearanceIVUpTo1kV:
		return "IV-1kV"
	case ClearanceIVAbove1kV:
		return "IV+1kV"
	case ClearanceV:
		return "V"
	}
	return "?"
}

// Label returns the long display name of the level.
func (g ClearanceGroup) Label() string {
	switch g {
	case ClearanceNone:
		return "Not selected"
	case ClearanceI:
		return "Electrical safety group I"
	case ClearanceII:
		return "Electrical safety group II"
	case ClearanceIII:
		return "Electrical safety group III"
	case ClearanceIVUpTo1kV:
		return "Electrical safety group IV up to 1000V"
	case ClearanceIVAbove1kV:
		return "Electrical safety group IV above 1000V"
	case ClearanceV:
		return "Electrical safety group V"
	}
	return "Unknown"
}

func (g ClearanceGroup) String() string { return g.Code() }

// AtLeast reports whether g meets the required level.
func (g ClearanceGroup) AtLeast(required ClearanceGroup) bool {
	return g >= required
}

// ParseClearanceGroup converts a code into a ClearanceGroup.
func ParseClearanceGroup(s string) (ClearanceGroup, error) {
	if s == "" {
		return ClearanceNone, nil
	}
	for _, g := range ClearanceGroups {
		if g.Code() == s {
			return g, nil
		}
	}
	return ClearanceNone, fmt.Errorf("unknown clearance group %q", s)
}

// MarshalText encodes the group as its code.
func (g ClearanceGroup) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("invalid clearance group %d", int(g))
	}
	return []byte(g.Code()), nil
}

// UnmarshalText decodes a code produced by MarshalText.
func (g *ClearanceGroup) UnmarshalText(b []byte) error {
	parsed, err := ParseClearanceGroup(string(b))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Employee is an authenticated person who can be given tasks. The phone
// number is the login identifier.
type Employee struct {
	ID           int64          `gorm:"primaryKey" json:"id"`
	Phone        string         `gorm:"uniqueIndex;size:15;not null" json:"phone"`
	FirstName    string         `gorm:"size:30;not null" json:"first_name"`
	LastName     string         `gorm:"size:30;not null;index" json:"last_name"`
	Role         Role           `gorm:"size:15;not null" json:"role"`
	Clearance    ClearanceGroup `gorm:"column:clearance_group;not null" json:"clearance_group"`
	PasswordHash string         `gorm:"size:255;not null" json:"-"`
	TokenVersion int64          `gorm:"not null" json:"-"`
	IsAdmin      bool           `gorm:"not null" json:"is_admin"`
	IsActive     bool           `gorm:"not null" json:"is_active"`
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
}

// FullName returns "First Last".
func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}
