// Package entity defines the domain models for investment decisions.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Status is an investor's verdict on a pitch.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is a known decision status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusRejected
}

// Decision is one investor's decision on one pitch analysis.
// There is at most one per (PitchAnalysisID, InvestorID).
type Decision struct {
	ID              uuid.UUID
	PitchAnalysisID uuid.UUID
	InvestorID      uuid.UUID
	Status          Status
	GrantedAmount   *float64
	Feedback        *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Input is what an investor submits.
type Input struct {
	Status        Status
	GrantedAmount *float64
	Feedback      *string
}
