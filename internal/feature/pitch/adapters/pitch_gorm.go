// Package adapters はピッチ分析のGORMリポジトリを提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	analyzerentity "pitch_backend/internal/feature/analyzer/domain/entity"
	"pitch_backend/internal/feature/pitch/domain/entity"
	"pitch_backend/internal/feature/pitch/usecase"
	startupadapters "pitch_backend/internal/feature/startup/adapters"
)

// listLimit は投資家向け一覧の最大件数です。
const listLimit = 200

// PitchAnalysisModel はpitch_analysesテーブルのGORMモデルです。
type PitchAnalysisModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	StartupID   uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName    string    `gorm:"size:255;not null"`
	FilePath    string    `gorm:"size:512;not null"`
	ContentType string    `gorm:"size:128;not null"`

	Title            *string `gorm:"size:200"`
	PitchDescription *string `gorm:"type:text"`
	Category         *string `gorm:"size:100"`
	RequiredAmount   *string `gorm:"size:50"`

	AnalysisStatus string  `gorm:"size:20;not null;index"`
	Source         *string `gorm:"size:20"`

	MarketSizeScore           *int
	TeamStrengthScore         *int
	ProductViabilityScore     *int
	FinancialHealthScore      *int
	CompetitiveAdvantageScore *int
	OverallScore              *int

	KeyStrengths datatypes.JSONSlice[string]
	KeyConcerns  datatypes.JSONSlice[string]
	RiskFactors  datatypes.JSONSlice[string]

	MarketInsights           *string `gorm:"type:text"`
	TeamAnalysis             *string `gorm:"type:text"`
	FinancialSummary         *string `gorm:"type:text"`
	InvestmentRecommendation *string `gorm:"size:20"`

	FailureReason *string `gorm:"size:255"`
	Attempts      int     `gorm:"not null;default:0"`

	UploadedAt time.Time `gorm:"not null;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time `gorm:"index"`
}

// TableName はGORMが使用するテーブル名を返します。
func (PitchAnalysisModel) TableName() string {
	return "pitch_analyses"
}

func toModel(p *entity.PitchAnalysis) *PitchAnalysisModel {
	m := &PitchAnalysisModel{
		ID:               p.ID,
		StartupID:        p.StartupID,
		FileName:         p.FileName,
		FilePath:         p.FilePath,
		ContentType:      p.ContentType,
		Title:            p.Title,
		PitchDescription: p.Description,
		Category:         p.Category,
		RequiredAmount:   p.RequiredAmount,
		AnalysisStatus:   string(p.Status),
		FailureReason:    p.FailureReason,
		Attempts:         p.Attempts,
		UploadedAt:       p.UploadedAt,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if r := p.Result; r != nil {
		source := string(r.Source)
		m.Source = &source
		m.MarketSizeScore = r.MarketSizeScore
		m.TeamStrengthScore = r.TeamStrengthScore
		m.ProductViabilityScore = r.ProductViabilityScore
		m.FinancialHealthScore = r.FinancialHealthScore
		m.CompetitiveAdvantageScore = r.CompetitiveAdvantageScore
		m.OverallScore = r.OverallScore
		m.KeyStrengths = r.KeyStrengths
		m.KeyConcerns = r.KeyConcerns
		m.RiskFactors = r.RiskFactors
		m.MarketInsights = r.MarketInsights
		m.TeamAnalysis = r.TeamAnalysis
		m.FinancialSummary = r.FinancialSummary
		if r.InvestmentRecommendation != nil {
			rec := string(*r.InvestmentRecommendation)
			m.InvestmentRecommendation = &rec
		}
	}
	return m
}

// ToEntity はGORMモデルをドメインエンティティに変換します。
// スコア列は完了済みの行でのみ読み込みます。
func (m *PitchAnalysisModel) ToEntity() entity.PitchAnalysis {
	p := entity.PitchAnalysis{
		ID:             m.ID,
		StartupID:      m.StartupID,
		FileName:       m.FileName,
		FilePath:       m.FilePath,
		ContentType:    m.ContentType,
		Title:          m.Title,
		Description:    m.PitchDescription,
		Category:       m.Category,
		RequiredAmount: m.RequiredAmount,
		Status:         entity.Status(m.AnalysisStatus),
		FailureReason:  m.FailureReason,
		Attempts:       m.Attempts,
		UploadedAt:     m.UploadedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if p.Status != entity.StatusCompleted {
		return p
	}
	r := &analyzerentity.ScoreResult{
		MarketSizeScore:           m.MarketSizeScore,
		TeamStrengthScore:         m.TeamStrengthScore,
		ProductViabilityScore:     m.ProductViabilityScore,
		FinancialHealthScore:      m.FinancialHealthScore,
		CompetitiveAdvantageScore: m.CompetitiveAdvantageScore,
		OverallScore:              m.OverallScore,
		KeyStrengths:              nonNil(m.KeyStrengths),
		KeyConcerns:               nonNil(m.KeyConcerns),
		RiskFactors:               nonNil(m.RiskFactors),
		MarketInsights:            m.MarketInsights,
		TeamAnalysis:              m.TeamAnalysis,
		FinancialSummary:          m.FinancialSummary,
		Source:                    analyzerentity.SourceModel,
	}
	if m.Source != nil {
		r.Source = analyzerentity.Source(*m.Source)
	}
	if m.InvestmentRecommendation != nil {
		rec := analyzerentity.Recommendation(*m.InvestmentRecommendation)
		r.InvestmentRecommendation = &rec
	}
	p.Result = r
	return p
}

func nonNil(s datatypes.JSONSlice[string]) []string {
	if s == nil {
		return []string{}
	}
	return []string(s)
}

type pitchRepository struct {
	db *gorm.DB
}

var _ usecase.PitchRepository = (*pitchRepository)(nil)

// NewPitchRepository はpitchRepositoryの新しいインスタンスを生成します。
func NewPitchRepository(db *gorm.DB) *pitchRepository {
	return &pitchRepository{db: db}
}

func (r *pitchRepository) Create(ctx context.Context, p *entity.PitchAnalysis) error {
	m := toModel(p)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	p.CreatedAt, p.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (r *pitchRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.PitchAnalysis, error) {
	var m PitchAnalysisModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrPitchNotFound
		}
		return nil, err
	}
	p := m.ToEntity()
	return &p, nil
}

// Save はステータスのcompare-and-setでpの可変列を書き込みます。
func (r *pitchRepository) Save(ctx context.Context, p *entity.PitchAnalysis, expected entity.Status) error {
	m := toModel(p)
	now := r.db.NowFunc()
	res := r.db.WithContext(ctx).Model(&PitchAnalysisModel{}).
		Where("id = ? AND analysis_status = ?", p.ID, string(expected)).
		Updates(map[string]any{
			"analysis_status":             m.AnalysisStatus,
			"source":                      m.Source,
			"market_size_score":           m.MarketSizeScore,
			"team_strength_score":         m.TeamStrengthScore,
			"product_viability_score":     m.ProductViabilityScore,
			"financial_health_score":      m.FinancialHealthScore,
			"competitive_advantage_score": m.CompetitiveAdvantageScore,
			"overall_score":               m.OverallScore,
			"key_strengths":               m.KeyStrengths,
			"key_concerns":                m.KeyConcerns,
			"risk_factors":                m.RiskFactors,
			"market_insights":             m.MarketInsights,
			"team_analysis":               m.TeamAnalysis,
			"financial_summary":           m.FinancialSummary,
			"investment_recommendation":   m.InvestmentRecommendation,
			"failure_reason":              m.FailureReason,
			"attempts":                    m.Attempts,
			"updated_at":                  now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrConcurrentUpdate
	}
	p.UpdatedAt = now
	return nil
}

// ListByStartup はスタートアップの分析をアップロードの新しい順に返します。
func (r *pitchRepository) ListByStartup(ctx context.Context, startupID uuid.UUID) ([]entity.PitchAnalysis, error) {
	var rows []PitchAnalysisModel
	err := r.db.WithContext(ctx).
		Where("startup_id = ?", startupID).
		Order("uploaded_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]entity.PitchAnalysis, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToEntity())
	}
	return out, nil
}

// ListCompleted は完了済みの分析をスタートアップ情報付きでアップロードの新しい順に返します。
func (r *pitchRepository) ListCompleted(ctx context.Context) ([]entity.PitchWithStartup, error) {
	db := r.db.WithContext(ctx)

	var rows []PitchAnalysisModel
	err := db.Where("analysis_status = ?", string(entity.StatusCompleted)).
		Order("uploaded_at DESC").
		Limit(listLimit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []entity.PitchWithStartup{}, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	seen := make(map[uuid.UUID]struct{}, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.StartupID]; !ok {
			seen[row.StartupID] = struct{}{}
			ids = append(ids, row.StartupID)
		}
	}
	var startups []startupadapters.StartupModel
	if err := db.Where("id IN ?", ids).Find(&startups).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]entity.StartupSummary, len(startups))
	for _, s := range startups {
		byID[s.ID] = entity.StartupSummary{ID: s.ID, Name: s.Name, Domain: s.Domain, Stage: s.Stage, Logo: s.Logo}
	}

	out := make([]entity.PitchWithStartup, 0, len(rows))
	for i := range rows {
		summary, ok := byID[rows[i].StartupID]
		if !ok {
			// 削除済みスタートアップの分析は表示しない
			continue
		}
		out = append(out, entity.PitchWithStartup{Pitch: rows[i].ToEntity(), Startup: summary})
	}
	return out, nil
}

func (r *pitchRepository) stale(ctx context.Context, olderThan time.Time) *gorm.DB {
	return r.db.WithContext(ctx).Model(&PitchAnalysisModel{}).
		Where("analysis_status IN ? AND updated_at < ?",
			[]string{string(entity.StatusPending), string(entity.StatusProcessing)}, olderThan)
}

// ExpireStale は放置された行を1文で期限切れにし、スコアを消去します。
func (r *pitchRepository) ExpireStale(ctx context.Context, olderThan time.Time, reason string) (int64, error) {
	res := r.stale(ctx, olderThan).Updates(map[string]any{
		"analysis_status":             string(entity.StatusExpired),
		"failure_reason":              reason,
		"source":                      nil,
		"market_size_score":           nil,
		"team_strength_score":         nil,
		"product_viability_score":     nil,
		"financial_health_score":      nil,
		"competitive_advantage_score": nil,
		"overall_score":               nil,
		"market_insights":             nil,
		"team_analysis":               nil,
		"financial_summary":           nil,
		"investment_recommendation":   nil,
		"updated_at":                  r.db.NowFunc(),
	})
	return res.RowsAffected, res.Error
}

func (r *pitchRepository) CountStale(ctx context.Context, olderThan time.Time) (int64, error) {
	var n int64
	err := r.stale(ctx, olderThan).Count(&n).Error
	return n, err
}
