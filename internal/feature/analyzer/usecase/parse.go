package usecase

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"pitch_backend/internal/feature/analyzer/domain/entity"
)

var (
	// fencedBlock は ``` ブロックにマッチし、言語タグと本文を取り出します。
	fencedBlock = regexp.MustCompile("(?s)```([A-Za-z0-9_+-]*)[ \\t]*\\r?\\n?(.*?)```")
	// braceJSON は最初の '{' から最後の '}' までにマッチします。
	braceJSON = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractJSON はモデルの応答からJSON部分を取り出します。
// タグ無しまたはjsonタグのコードブロックのうちオブジェクトを含む最初のものを優先し、
// 次に最も外側の波括弧の範囲、最後にテキスト全体を使います。
func ExtractJSON(text string) string {
	for _, m := range fencedBlock.FindAllStringSubmatch(text, -1) {
		if m[1] != "" && !strings.EqualFold(m[1], "json") {
			continue
		}
		if body := strings.TrimSpace(m[2]); strings.HasPrefix(body, "{") {
			return body
		}
	}
	if m := braceJSON.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return strings.TrimSpace(text)
}

// ParseScoreResult はモデルの応答を正規化済みのScoreResult（SourceModel）に変換します。
func ParseScoreResult(text string) (*entity.ScoreResult, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(ExtractJSON(text)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	if raw == nil {
		return nil, ErrUnparseable
	}

	return &entity.ScoreResult{
		MarketSizeScore:           coerceScore(raw["market_size_score"]),
		TeamStrengthScore:         coerceScore(raw["team_strength_score"]),
		ProductViabilityScore:     coerceScore(raw["product_viability_score"]),
		FinancialHealthScore:      coerceScore(raw["financial_health_score"]),
		CompetitiveAdvantageScore: coerceScore(raw["competitive_advantage_score"]),
		OverallScore:              coerceScore(raw["overall_score"]),
		KeyStrengths:              coerceList(raw["key_strengths"]),
		KeyConcerns:               coerceList(raw["key_concerns"]),
		RiskFactors:               coerceList(raw["risk_factors"]),
		MarketInsights:            coerceText(raw["market_insights"]),
		TeamAnalysis:              coerceText(raw["team_analysis"]),
		FinancialSummary:          coerceText(raw["financial_summary"]),
		InvestmentRecommendation:  coerceRecommendation(raw["investment_recommendation"]),
		Source:                    entity.SourceModel,
	}, nil
}

// FallbackResult はモデルの応答を解析できなかった場合に返す固定の結果です。
// 呼び出しごとに新しい値を返すため、呼び出し側で変更して構いません。
func FallbackResult() *entity.ScoreResult {
	rec := entity.RecommendationHold
	return &entity.ScoreResult{
		MarketSizeScore:           intPtr(65),
		TeamStrengthScore:         intPtr(70),
		ProductViabilityScore:     intPtr(68),
		FinancialHealthScore:      intPtr(60),
		CompetitiveAdvantageScore: intPtr(72),
		OverallScore:              intPtr(67),
		KeyStrengths:              []string{"Innovative approach", "Strong market positioning", "Experienced founders"},
		KeyConcerns:               []string{"Market competition", "Scaling challenges", "Funding requirements"},
		RiskFactors:               []string{"Market volatility", "Regulatory changes", "Competition intensity"},
		MarketInsights:            strPtr("The market shows promising growth potential with increasing demand."),
		TeamAnalysis:              strPtr("The founding team demonstrates relevant industry experience."),
		FinancialSummary:          strPtr("Financial projections appear realistic with clear revenue model."),
		InvestmentRecommendation:  &rec,
		Source:                    entity.SourceFallback,
	}
}

// coerceScore は数値と数値文字列（"72", "72.4", "72%"）を受け付け、
// 四捨五入して[0,100]に収めます。
func coerceScore(v any) *int {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(val), "%"))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n := int(math.Round(math.Max(0, math.Min(100, f))))
	return &n
}

func coerceText(v any) *string {
	var s string
	switch val := v.(type) {
	case string:
		s = strings.TrimSpace(val)
	case float64, bool:
		s = fmt.Sprint(val)
	default:
		return nil
	}
	if s == "" {
		return nil
	}
	return &s
}

// coerceList は常にnilでないスライスを返します。単独の文字列は1要素として扱います。
func coerceList(v any) []string {
	out := []string{}
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	case string:
		if s := strings.TrimSpace(val); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func coerceRecommendation(v any) *entity.Recommendation {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	norm := strings.Join(strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(s)), " ")
	for _, r := range entity.Recommendations {
		if strings.EqualFold(norm, string(r)) {
			rec := r
			return &rec
		}
	}
	return nil
}

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }
