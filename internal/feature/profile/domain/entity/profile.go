// Package entity defines the domain models for the profile feature.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Role is the kind of account a user signed up as.
type Role string

const (
	RoleFounder  Role = "founder"
	RoleInvestor Role = "investor"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleFounder || r == RoleInvestor
}

// Profile is the public-facing account record. Its ID equals the user ID.
type Profile struct {
	ID                  uuid.UUID
	Email               string
	FullName            string
	Role                Role
	InvestmentFocus     []string
	MinInvestmentAmount *float64
	MaxInvestmentAmount *float64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Preferences is the owner-editable part of a profile.
type Preferences struct {
	FullName            string
	InvestmentFocus     []string
	MinInvestmentAmount *float64
	MaxInvestmentAmount *float64
}
