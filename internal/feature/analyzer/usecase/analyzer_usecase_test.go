package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitch_backend/internal/feature/analyzer/domain/entity"
)

// mockCompleter is a mock implementation of the Completer interface.
type mockCompleter struct {
	CompleteFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	calls        int
}

// Complete is the mock implementation of the Complete method.
func (m *mockCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.calls++
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, systemPrompt, userPrompt)
	}
	return "", errors.New("not configured")
}

func TestAnalyzerUsecase_Analyze(t *testing.T) {
	validInput := entity.PitchInput{
		PitchContent: "We build solar drones.",
		StartupName:  "SkyVolt",
		Domain:       "CleanTech",
	}

	t.Run("model reply is parsed", func(t *testing.T) {
		mock := &mockCompleter{
			CompleteFunc: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
				assert.Equal(t, SystemPrompt, systemPrompt)
				assert.Contains(t, userPrompt, "SkyVolt")
				assert.Contains(t, userPrompt, "CleanTech")
				assert.Contains(t, userPrompt, "We build solar drones.")
				return `{"overall_score": 81, "investment_recommendation": "Buy"}`, nil
			},
		}
		uc := NewAnalyzerUsecase(mock)

		got, err := uc.Analyze(context.Background(), validInput)

		require.NoError(t, err)
		assert.Equal(t, 81, *got.OverallScore)
		assert.Equal(t, entity.RecommendationBuy, *got.InvestmentRecommendation)
		assert.Equal(t, entity.SourceModel, got.Source)
	})

	t.Run("unparseable reply falls back", func(t *testing.T) {
		mock := &mockCompleter{
			CompleteFunc: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
				return "Sorry, I can't produce JSON today.", nil
			},
		}
		uc := NewAnalyzerUsecase(mock)

		got, err := uc.Analyze(context.Background(), validInput)

		require.NoError(t, err)
		assert.Equal(t, entity.SourceFallback, got.Source)
		assert.Equal(t, 67, *got.OverallScore)
	})

	t.Run("missing fields are rejected before calling the model", func(t *testing.T) {
		tests := []entity.PitchInput{
			{PitchContent: "", StartupName: "SkyVolt"},
			{PitchContent: "content", StartupName: "   "},
		}
		for _, in := range tests {
			mock := &mockCompleter{}
			uc := NewAnalyzerUsecase(mock)

			_, err := uc.Analyze(context.Background(), in)

			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Zero(t, mock.calls)
		}
	})

	t.Run("provider sentinels pass through", func(t *testing.T) {
		for _, sentinel := range []error{ErrRateLimited, ErrPaymentRequired, ErrUpstream} {
			mock := &mockCompleter{
				CompleteFunc: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
					return "", sentinel
				},
			}
			uc := NewAnalyzerUsecase(mock)

			_, err := uc.Analyze(context.Background(), validInput)

			assert.ErrorIs(t, err, sentinel)
		}
	})

	t.Run("unknown provider errors become upstream errors", func(t *testing.T) {
		mock := &mockCompleter{
			CompleteFunc: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
				return "", context.DeadlineExceeded
			},
		}
		uc := NewAnalyzerUsecase(mock)

		_, err := uc.Analyze(context.Background(), validInput)

		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("long content is truncated", func(t *testing.T) {
		var prompt string
		mock := &mockCompleter{
			CompleteFunc: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
				prompt = userPrompt
				return `{}`, nil
			},
		}
		uc := NewAnalyzerUsecase(mock)
		in := validInput
		in.PitchContent = strings.Repeat("x", MaxPitchContentRunes+50)

		_, err := uc.Analyze(context.Background(), in)

		require.NoError(t, err)
		assert.NotContains(t, prompt, strings.Repeat("x", MaxPitchContentRunes+1))
		assert.Contains(t, prompt, strings.Repeat("x", MaxPitchContentRunes))
	})
}

func TestBuildUserPrompt(t *testing.T) {
	got := BuildUserPrompt(entity.PitchInput{PitchContent: "body", StartupName: "Acme"})

	assert.Contains(t, got, "Acme")
	assert.Contains(t, got, "unspecified")
	for _, field := range []string{
		"market_size_score", "team_strength_score", "product_viability_score",
		"financial_health_score", "competitive_advantage_score", "overall_score",
		"key_strengths", "key_concerns", "market_insights", "team_analysis",
		"financial_summary", "risk_factors", "investment_recommendation",
	} {
		assert.Contains(t, got, field)
	}
}
