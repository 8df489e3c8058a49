// Package adapters はプロフィールのGORMリポジトリを提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"pitch_backend/internal/feature/profile/domain/entity"
	"pitch_backend/internal/feature/profile/usecase"
)

// ProfileModel はprofilesテーブルのGORMモデルです。
type ProfileModel struct {
	ID                  uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	Email               string                      `gorm:"size:255;not null"`
	FullName            string                      `gorm:"size:255;not null"`
	Role                string                      `gorm:"size:16;not null;index"`
	InvestmentFocus     datatypes.JSONSlice[string] `gorm:"not null"`
	MinInvestmentAmount *float64
	MaxInvestmentAmount *float64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TableName はGORMが使用するテーブル名を返します。
func (ProfileModel) TableName() string {
	return "profiles"
}

// ToEntity はGORMモデルをドメインエンティティに変換します。
func (m *ProfileModel) ToEntity() *entity.Profile {
	focus := []string(m.InvestmentFocus)
	if focus == nil {
		focus = []string{}
	}
	return &entity.Profile{
		ID:                  m.ID,
		Email:               m.Email,
		FullName:            m.FullName,
		Role:                entity.Role(m.Role),
		InvestmentFocus:     focus,
		MinInvestmentAmount: m.MinInvestmentAmount,
		MaxInvestmentAmount: m.MaxInvestmentAmount,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// ProfileModelFromEntity はドメインエンティティをGORMモデルに変換します。
func ProfileModelFromEntity(p *entity.Profile) *ProfileModel {
	focus := p.InvestmentFocus
	if focus == nil {
		focus = []string{}
	}
	return &ProfileModel{
		ID:                  p.ID,
		Email:               p.Email,
		FullName:            p.FullName,
		Role:                string(p.Role),
		InvestmentFocus:     datatypes.JSONSlice[string](focus),
		MinInvestmentAmount: p.MinInvestmentAmount,
		MaxInvestmentAmount: p.MaxInvestmentAmount,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

// profileRepository はGORMでusecase.ProfileRepositoryを実装します。
type profileRepository struct {
	db *gorm.DB
}

var _ usecase.ProfileRepository = (*profileRepository)(nil)

// NewProfileRepository はprofileRepositoryの新しいインスタンスを生成します。
func NewProfileRepository(db *gorm.DB) *profileRepository {
	return &profileRepository{db: db}
}

// FindByID は該当行が無い場合usecase.ErrProfileNotFoundを返します。
func (r *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	var m ProfileModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrProfileNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// UpdatePreferences は編集可能な列を書き込みます。nilの金額はNULLとして保存します。
func (r *profileRepository) UpdatePreferences(ctx context.Context, id uuid.UUID, p entity.Preferences) (*entity.Profile, error) {
	focus := p.InvestmentFocus
	if focus == nil {
		focus = []string{}
	}
	res := r.db.WithContext(ctx).Model(&ProfileModel{}).Where("id = ?", id).Updates(map[string]any{
		"full_name":             p.FullName,
		"investment_focus":      datatypes.JSONSlice[string](focus),
		"min_investment_amount": p.MinInvestmentAmount,
		"max_investment_amount": p.MaxInvestmentAmount,
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, usecase.ErrProfileNotFound
	}
	return r.FindByID(ctx, id)
}
