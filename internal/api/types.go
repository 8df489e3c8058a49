// Package api holds the request and response bodies shared by the HTTP handlers.
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse defines model for MessageResponse.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse defines model for TokenResponse.
type TokenResponse struct {
	Token string `json:"token"`
}

// SignupRequest defines model for SignupRequest.
type SignupRequest struct {
	Email    openapi_types.Email `json:"email" binding:"required"`
	Password string              `json:"password" binding:"required,min=8"`
	FullName string              `json:"full_name" binding:"required,max=255"`
	Role     string              `json:"role" binding:"required,oneof=founder investor"`
}

// LoginRequest defines model for LoginRequest.
type LoginRequest struct {
	Email    openapi_types.Email `json:"email" binding:"required"`
	Password string              `json:"password" binding:"required"`
}

// AnalyzePitchRequest is the body of the analysis function.
type AnalyzePitchRequest struct {
	PitchContent string `json:"pitchContent" binding:"required"`
	StartupName  string `json:"startupName" binding:"required"`
	Domain       string `json:"domain"`
}

// ScoreFields is the fixed analysis schema. Every key is always rendered.
type ScoreFields struct {
	MarketSizeScore           *int     `json:"market_size_score"`
	TeamStrengthScore         *int     `json:"team_strength_score"`
	ProductViabilityScore     *int     `json:"product_viability_score"`
	FinancialHealthScore      *int     `json:"financial_health_score"`
	CompetitiveAdvantageScore *int     `json:"competitive_advantage_score"`
	OverallScore              *int     `json:"overall_score"`
	KeyStrengths              []string `json:"key_strengths"`
	KeyConcerns               []string `json:"key_concerns"`
	MarketInsights            *string  `json:"market_insights"`
	TeamAnalysis              *string  `json:"team_analysis"`
	FinancialSummary          *string  `json:"financial_summary"`
	RiskFactors               []string `json:"risk_factors"`
	InvestmentRecommendation  *string  `json:"investment_recommendation"`
}

// AnalyzePitchResponse is the analysis function result.
type AnalyzePitchResponse struct {
	ScoreFields
	Source string `json:"source"`
}

// ProfileResponse defines model for ProfileResponse.
type ProfileResponse struct {
	ID                  openapi_types.UUID  `json:"id"`
	Email               openapi_types.Email `json:"email"`
	FullName            string              `json:"full_name"`
	Role                string              `json:"role"`
	InvestmentFocus     []string            `json:"investment_focus"`
	MinInvestmentAmount *float64            `json:"min_investment_amount"`
	MaxInvestmentAmount *float64            `json:"max_investment_amount"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// UpdateProfileRequest defines model for UpdateProfileRequest.
type UpdateProfileRequest struct {
	FullName            string   `json:"full_name" binding:"required,max=255"`
	InvestmentFocus     []string `json:"investment_focus"`
	MinInvestmentAmount *float64 `json:"min_investment_amount" binding:"omitempty,gte=0"`
	MaxInvestmentAmount *float64 `json:"max_investment_amount" binding:"omitempty,gte=0"`
}

// StartupRequest is used for both create and update.
type StartupRequest struct {
	Name        string   `json:"name" binding:"required,max=255"`
	Domain      string   `json:"domain" binding:"required,max=100"`
	Stage       string   `json:"stage" binding:"required,max=50"`
	Funding     string   `json:"funding" binding:"required,max=50"`
	Description string   `json:"description" binding:"required"`
	Tags        []string `json:"tags"`
	Logo        string   `json:"logo" binding:"max=16"`
}

// StartupResponse defines model for StartupResponse.
type StartupResponse struct {
	ID          openapi_types.UUID `json:"id"`
	UserID      openapi_types.UUID `json:"user_id"`
	Name        string             `json:"name"`
	Domain      string             `json:"domain"`
	Stage       string             `json:"stage"`
	Funding     string             `json:"funding"`
	Description string             `json:"description"`
	Tags        []string           `json:"tags"`
	Logo        string             `json:"logo"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// StartupSummary is the startup excerpt embedded in investor pitch listings.
type StartupSummary struct {
	ID     openapi_types.UUID `json:"id"`
	Name   string             `json:"name"`
	Domain string             `json:"domain"`
	Stage  string             `json:"stage"`
	Logo   string             `json:"logo"`
}

// SaveToggleResponse defines model for SaveToggleResponse.
type SaveToggleResponse struct {
	Saved bool `json:"saved"`
}

// PitchAnalysisResponse defines model for PitchAnalysisResponse.
type PitchAnalysisResponse struct {
	ID               openapi_types.UUID `json:"id"`
	StartupID        openapi_types.UUID `json:"startup_id"`
	FileName         string             `json:"file_name"`
	FilePath         string             `json:"file_path"`
	ContentType      string             `json:"content_type"`
	Title            *string            `json:"title"`
	PitchDescription *string            `json:"pitch_description"`
	Category         *string            `json:"category"`
	RequiredAmount   *string            `json:"required_amount"`
	AnalysisStatus   string             `json:"analysis_status"`
	Source           *string            `json:"source"`
	ScoreFields
	FailureReason *string         `json:"failure_reason"`
	Attempts      int             `json:"attempts"`
	UploadedAt    time.Time       `json:"uploaded_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Startup       *StartupSummary `json:"startup,omitempty"`
}

// PitchFailureResponse is returned when an upload or retry was stored but its analysis failed.
type PitchFailureResponse struct {
	Error    string                 `json:"error"`
	Analysis *PitchAnalysisResponse `json:"analysis,omitempty"`
}

// DecisionRequest defines model for DecisionRequest.
type DecisionRequest struct {
	Status        string   `json:"status" binding:"required,oneof=pending accepted rejected"`
	GrantedAmount *float64 `json:"granted_amount" binding:"omitempty,gte=0"`
	Feedback      *string  `json:"feedback" binding:"omitempty,max=5000"`
}

// DecisionResponse defines model for DecisionResponse.
type DecisionResponse struct {
	ID              openapi_types.UUID `json:"id"`
	PitchAnalysisID openapi_types.UUID `json:"pitch_analysis_id"`
	InvestorID      openapi_types.UUID `json:"investor_id"`
	Status          string             `json:"status"`
	GrantedAmount   *float64           `json:"granted_amount"`
	Feedback        *string            `json:"feedback"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}
