// Package handler はピッチ分析関数をHTTPで公開します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pitch_backend/internal/api"
	"pitch_backend/internal/feature/analyzer/domain/entity"
	"pitch_backend/internal/feature/analyzer/usecase"
)

const (
	msgRateLimited     = "Rate limit exceeded. Please try again later."
	msgPaymentRequired = "Payment required. Please add credits to your workspace."
	msgAnalysisFailed  = "Failed to analyze pitch"
)

// PitchAnalyzer はハンドラが依存する分析機能です。
type PitchAnalyzer interface {
	Analyze(ctx context.Context, in entity.PitchInput) (*entity.ScoreResult, error)
}

// AnalyzerHandler は POST /functions/analyze-pitch を処理します。
type AnalyzerHandler struct {
	analyzer PitchAnalyzer
}

// NewAnalyzerHandler はAnalyzerHandlerの新しいインスタンスを生成します。
func NewAnalyzerHandler(analyzer PitchAnalyzer) *AnalyzerHandler {
	return &AnalyzerHandler{analyzer: analyzer}
}

// AnalyzePitch は分析関数を実行します。
//   - 400: ボディが不正、またはpitchContent/startupNameが無い
//   - 429 / 402: プロバイダのレート制限または支払い要求
//   - 500: その他のプロバイダ障害
//   - 200: スコアオブジェクト（フォールバックを含む）
func (h *AnalyzerHandler) AnalyzePitch(c *gin.Context) {
	var req api.AnalyzePitchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("analyze-pitch validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "pitchContent and startupName are required"})
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), entity.PitchInput{
		PitchContent: req.PitchContent,
		StartupName:  req.StartupName,
		Domain:       req.Domain,
	})
	if err != nil {
		status, msg := StatusForError(err)
		if status >= http.StatusInternalServerError {
			slog.Error("pitch analysis failed", "error", err, "startup", req.StartupName)
		} else {
			slog.Warn("pitch analysis rejected", "error", err, "startup", req.StartupName)
		}
		c.JSON(status, api.ErrorResponse{Error: msg})
		return
	}

	c.JSON(http.StatusOK, api.AnalyzePitchResponse{
		ScoreFields: ToScoreFields(result),
		Source:      string(result.Source),
	})
}

// StatusForError は分析エラーをHTTPステータスとクライアント向けメッセージに変換します。
func StatusForError(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return http.StatusBadRequest, "pitchContent and startupName are required"
	case errors.Is(err, usecase.ErrRateLimited):
		return http.StatusTooManyRequests, msgRateLimited
	case errors.Is(err, usecase.ErrPaymentRequired):
		return http.StatusPaymentRequired, msgPaymentRequired
	default:
		return http.StatusInternalServerError, msgAnalysisFailed
	}
}

// ToScoreFields はScoreResultを全キー付きのレスポンスに変換します。
func ToScoreFields(r *entity.ScoreResult) api.ScoreFields {
	out := api.ScoreFields{
		MarketSizeScore:           r.MarketSizeScore,
		TeamStrengthScore:         r.TeamStrengthScore,
		ProductViabilityScore:     r.ProductViabilityScore,
		FinancialHealthScore:      r.FinancialHealthScore,
		CompetitiveAdvantageScore: r.CompetitiveAdvantageScore,
		OverallScore:              r.OverallScore,
		KeyStrengths:              nonNil(r.KeyStrengths),
		KeyConcerns:               nonNil(r.KeyConcerns),
		RiskFactors:               nonNil(r.RiskFactors),
		MarketInsights:            r.MarketInsights,
		TeamAnalysis:              r.TeamAnalysis,
		FinancialSummary:          r.FinancialSummary,
	}
	if r.InvestmentRecommendation != nil {
		rec := string(*r.InvestmentRecommendation)
		out.InvestmentRecommendation = &rec
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
