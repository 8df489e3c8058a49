// Package entity defines the domain models for the pitch feature.
package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	analyzerentity "pitch_backend/internal/feature/analyzer/domain/entity"
	profileentity "pitch_backend/internal/feature/profile/domain/entity"
)

// MaxAttempts is the total number of analysis runs allowed per pitch.
const MaxAttempts = 3

// Status is the lifecycle state of a pitch analysis.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusExpired    Status = "expired"
)

var (
	// ErrInvalidTransition is returned when a status change is not allowed.
	ErrInvalidTransition = errors.New("invalid analysis status transition")
	// ErrRetryLimitReached is returned when a pitch has used all its attempts.
	ErrRetryLimitReached = errors.New("analysis retry limit reached")
)

// PitchAnalysis is an uploaded pitch document and its analysis.
// Result is non-nil only while Status is StatusCompleted.
type PitchAnalysis struct {
	ID          uuid.UUID
	StartupID   uuid.UUID
	FileName    string
	FilePath    string
	ContentType string

	Title          *string
	Description    *string
	Category       *string
	RequiredAmount *string

	Status        Status
	Result        *analyzerentity.ScoreResult
	FailureReason *string
	Attempts      int

	UploadedAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// UploadMeta is the form data sent with a pitch file.
type UploadMeta struct {
	Title          string
	Description    string
	Category       string
	RequiredAmount string
}

// NewPitchAnalysis creates a pending analysis for a stored file.
func NewPitchAnalysis(startupID uuid.UUID, fileName, filePath, contentType string, meta UploadMeta, uploadedAt time.Time) *PitchAnalysis {
	return &PitchAnalysis{
		ID:             uuid.New(),
		StartupID:      startupID,
		FileName:       fileName,
		FilePath:       filePath,
		ContentType:    contentType,
		Title:          optional(meta.Title),
		Description:    optional(meta.Description),
		Category:       optional(meta.Category),
		RequiredAmount: optional(meta.RequiredAmount),
		Status:         StatusPending,
		UploadedAt:     uploadedAt,
	}
}

// CanRetry reports whether Retry would be accepted.
func (p *PitchAnalysis) CanRetry() bool {
	return (p.Status == StatusFailed || p.Status == StatusExpired) && p.Attempts < MaxAttempts
}

// StartProcessing moves a pending analysis to processing and counts the attempt.
func (p *PitchAnalysis) StartProcessing() error {
	if p.Status != StatusPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, StatusProcessing)
	}
	p.begin()
	return nil
}

// Retry moves a failed or expired analysis back to processing.
func (p *PitchAnalysis) Retry() error {
	if p.Status != StatusFailed && p.Status != StatusExpired {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, StatusProcessing)
	}
	if p.Attempts >= MaxAttempts {
		return ErrRetryLimitReached
	}
	p.begin()
	return nil
}

func (p *PitchAnalysis) begin() {
	p.Status = StatusProcessing
	p.Attempts++
	p.Result = nil
	p.FailureReason = nil
}

// Complete stores the result of a processing analysis.
func (p *PitchAnalysis) Complete(result *analyzerentity.ScoreResult) error {
	if p.Status != StatusProcessing {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, StatusCompleted)
	}
	if result == nil {
		return errors.New("analysis result is nil")
	}
	p.Status = StatusCompleted
	p.Result = result
	p.FailureReason = nil
	return nil
}

// Fail marks a processing analysis as failed and clears any scores.
func (p *PitchAnalysis) Fail(reason string) error {
	if p.Status != StatusProcessing {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, StatusFailed)
	}
	p.Status = StatusFailed
	p.Result = nil
	p.FailureReason = &reason
	return nil
}

// Expire marks an abandoned pending or processing analysis as expired.
func (p *PitchAnalysis) Expire(reason string) error {
	if p.Status != StatusPending && p.Status != StatusProcessing {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, StatusExpired)
	}
	p.Status = StatusExpired
	p.Result = nil
	p.FailureReason = &reason
	return nil
}

// Caller is the authenticated user acting on a pitch.
type Caller struct {
	ID   uuid.UUID
	Role profileentity.Role
}

// StartupSummary is the startup excerpt shown with investor pitch listings.
type StartupSummary struct {
	ID     uuid.UUID
	Name   string
	Domain string
	Stage  string
	Logo   string
}

// PitchWithStartup pairs a completed analysis with its startup.
type PitchWithStartup struct {
	Pitch   PitchAnalysis
	Startup StartupSummary
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
