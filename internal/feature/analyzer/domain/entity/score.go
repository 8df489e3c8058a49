// Package entity defines the domain models for the analyzer feature.
package entity

// Recommendation is the model's investment verdict.
type Recommendation string

const (
	RecommendationStrongBuy Recommendation = "Strong Buy"
	RecommendationBuy       Recommendation = "Buy"
	RecommendationHold      Recommendation = "Hold"
	RecommendationPass      Recommendation = "Pass"
)

// Recommendations lists every accepted verdict.
var Recommendations = []Recommendation{
	RecommendationStrongBuy,
	RecommendationBuy,
	RecommendationHold,
	RecommendationPass,
}

// Source tells whether a result came from the model or the built-in fallback.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// PitchInput is what the analysis function receives.
type PitchInput struct {
	PitchContent string
	StartupName  string
	Domain       string
}

// ScoreResult is the fixed-shape analysis of a pitch.
// Scores are nil when the model did not provide a usable value, otherwise in [0,100].
type ScoreResult struct {
	MarketSizeScore           *int
	TeamStrengthScore         *int
	ProductViabilityScore     *int
	FinancialHealthScore      *int
	CompetitiveAdvantageScore *int
	OverallScore              *int

	KeyStrengths []string
	KeyConcerns  []string
	RiskFactors  []string

	MarketInsights   *string
	TeamAnalysis     *string
	FinancialSummary *string

	InvestmentRecommendation *Recommendation
	Source                   Source
}
