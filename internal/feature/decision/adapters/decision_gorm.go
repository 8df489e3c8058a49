// Package adapters は投資判断のGORMリポジトリを提供します。
package adapters

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pitch_backend/internal/feature/decision/domain/entity"
	"pitch_backend/internal/feature/decision/usecase"
)

// DecisionModel はinvestment_decisionsテーブルのGORMモデルです。
type DecisionModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	PitchAnalysisID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:decision_pitch_investor,priority:1"`
	InvestorID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:decision_pitch_investor,priority:2;index"`
	Status          string    `gorm:"size:20;not null"`
	GrantedAmount   *float64
	Feedback        *string `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName はGORMが使用するテーブル名を返します。
func (DecisionModel) TableName() string {
	return "investment_decisions"
}

func toModel(d *entity.Decision) *DecisionModel {
	return &DecisionModel{
		ID:              d.ID,
		PitchAnalysisID: d.PitchAnalysisID,
		InvestorID:      d.InvestorID,
		Status:          string(d.Status),
		GrantedAmount:   d.GrantedAmount,
		Feedback:        d.Feedback,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// ToEntity はGORMモデルをドメインエンティティに変換します。
func (m *DecisionModel) ToEntity() entity.Decision {
	return entity.Decision{
		ID:              m.ID,
		PitchAnalysisID: m.PitchAnalysisID,
		InvestorID:      m.InvestorID,
		Status:          entity.Status(m.Status),
		GrantedAmount:   m.GrantedAmount,
		Feedback:        m.Feedback,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

type decisionRepository struct {
	db *gorm.DB
}

var _ usecase.DecisionRepository = (*decisionRepository)(nil)

// NewDecisionRepository はdecisionRepositoryの新しいインスタンスを生成します。
func NewDecisionRepository(db *gorm.DB) *decisionRepository {
	return &decisionRepository{db: db}
}

// Upsert は INSERT ... ON CONFLICT (pitch_analysis_id, investor_id) DO UPDATE で保存し、
// 保存後の行を返します。IDは最初に挿入された行のものです。
func (r *decisionRepository) Upsert(ctx context.Context, d *entity.Decision) (*entity.Decision, error) {
	db := r.db.WithContext(ctx)
	m := toModel(d)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pitch_analysis_id"}, {Name: "investor_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "granted_amount", "feedback", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return nil, err
	}

	var stored DecisionModel
	if err := db.Where("pitch_analysis_id = ? AND investor_id = ?", d.PitchAnalysisID, d.InvestorID).
		First(&stored).Error; err != nil {
		return nil, err
	}
	out := stored.ToEntity()
	return &out, nil
}

func (r *decisionRepository) ListByPitch(ctx context.Context, pitchID uuid.UUID) ([]entity.Decision, error) {
	return r.list(ctx, "pitch_analysis_id = ?", pitchID)
}

func (r *decisionRepository) ListByPitchAndInvestor(ctx context.Context, pitchID, investorID uuid.UUID) ([]entity.Decision, error) {
	return r.list(ctx, "pitch_analysis_id = ? AND investor_id = ?", pitchID, investorID)
}

func (r *decisionRepository) ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]entity.Decision, error) {
	return r.list(ctx, "investor_id = ?", investorID)
}

// list は条件に合う投資判断を更新日時の新しい順に返します。
func (r *decisionRepository) list(ctx context.Context, query string, args ...any) ([]entity.Decision, error) {
	var rows []DecisionModel
	if err := r.db.WithContext(ctx).Where(query, args...).Order("updated_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Decision, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToEntity())
	}
	return out, nil
}
