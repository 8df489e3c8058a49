package usecase

import (
	"fmt"

	"pitch_backend/internal/feature/analyzer/domain/entity"
)

// Temperature は補完リクエストに付けるサンプリング温度です。
const Temperature = 0.7

// SystemPrompt はモデルをベンチャーキャピタルのアナリストとして設定します。
const SystemPrompt = `You are an expert venture capital analyst. Analyze the following startup pitch and provide detailed insights.

Your analysis should be thorough, data-driven, and actionable. Focus on:
1. Market opportunity and size
2. Team strength and capabilities
3. Product viability and innovation
4. Financial health and projections
5. Competitive advantages
6. Risk factors

Provide scores (0-100) for each category and an overall investment score.`

const userPromptTemplate = `Analyze this pitch for %s in the %s domain:

%s

Provide a comprehensive analysis in JSON format with:
- market_size_score (0-100)
- team_strength_score (0-100)
- product_viability_score (0-100)
- financial_health_score (0-100)
- competitive_advantage_score (0-100)
- overall_score (0-100)
- key_strengths (array of 3-5 strings)
- key_concerns (array of 3-5 strings)
- market_insights (detailed paragraph)
- team_analysis (detailed paragraph)
- financial_summary (detailed paragraph)
- risk_factors (array of 3-5 strings)
- investment_recommendation (clear recommendation: "Strong Buy", "Buy", "Hold", "Pass")`

// BuildUserPrompt はinからユーザー指示を組み立てます。
func BuildUserPrompt(in entity.PitchInput) string {
	domain := in.Domain
	if domain == "" {
		domain = "unspecified"
	}
	return fmt.Sprintf(userPromptTemplate, in.StartupName, domain, in.PitchContent)
}
