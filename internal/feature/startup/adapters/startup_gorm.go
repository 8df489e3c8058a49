// Package adapters はスタートアップと保存済みスタートアップのGORMリポジトリを提供します。
package adapters

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"pitch_backend/internal/feature/startup/domain/entity"
	"pitch_backend/internal/feature/startup/usecase"
)

// searchLimit はディレクトリ検索の最大件数です。
const searchLimit = 100

// StartupModel はstartupsテーブルのGORMモデルです。
type StartupModel struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Name        string                      `gorm:"size:255;not null"`
	Domain      string                      `gorm:"size:100;not null;index"`
	Stage       string                      `gorm:"size:50;not null"`
	Funding     string                      `gorm:"size:50;not null"`
	Description string                      `gorm:"type:text;not null"`
	Tags        datatypes.JSONSlice[string] `gorm:"not null"`
	Logo        string                      `gorm:"size:16;not null"`
	CreatedAt   time.Time                   `gorm:"index"`
	UpdatedAt   time.Time
}

// TableName はGORMが使用するテーブル名を返します。
func (StartupModel) TableName() string {
	return "startups"
}

func toModel(s *entity.Startup) *StartupModel {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	return &StartupModel{
		ID:          s.ID,
		UserID:      s.UserID,
		Name:        s.Name,
		Domain:      s.Domain,
		Stage:       s.Stage,
		Funding:     s.Funding,
		Description: s.Description,
		Tags:        datatypes.JSONSlice[string](tags),
		Logo:        s.Logo,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ToEntity はGORMモデルをドメインエンティティに変換します。
func (m *StartupModel) ToEntity() entity.Startup {
	tags := []string(m.Tags)
	if tags == nil {
		tags = []string{}
	}
	return entity.Startup{
		ID:          m.ID,
		UserID:      m.UserID,
		Name:        m.Name,
		Domain:      m.Domain,
		Stage:       m.Stage,
		Funding:     m.Funding,
		Description: m.Description,
		Tags:        tags,
		Logo:        m.Logo,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toEntities(rows []StartupModel) []entity.Startup {
	out := make([]entity.Startup, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToEntity())
	}
	return out
}

type startupRepository struct {
	db *gorm.DB
}

var _ usecase.StartupRepository = (*startupRepository)(nil)

// NewStartupRepository はstartupRepositoryの新しいインスタンスを生成します。
func NewStartupRepository(db *gorm.DB) *startupRepository {
	return &startupRepository{db: db}
}

func (r *startupRepository) Create(ctx context.Context, s *entity.Startup) error {
	m := toModel(s)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	s.CreatedAt, s.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (r *startupRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Startup, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByOwner はユーザーの最も古いスタートアップを返します。
func (r *startupRepository) FindByOwner(ctx context.Context, userID uuid.UUID) (*entity.Startup, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *startupRepository) first(ctx context.Context, query string, arg any) (*entity.Startup, error) {
	var m StartupModel
	if err := r.db.WithContext(ctx).Where(query, arg).Order("created_at ASC").First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrStartupNotFound
		}
		return nil, err
	}
	s := m.ToEntity()
	return &s, nil
}

// Update はsの編集可能な列を保存します。
func (r *startupRepository) Update(ctx context.Context, s *entity.Startup) error {
	m := toModel(s)
	res := r.db.WithContext(ctx).Model(&StartupModel{}).Where("id = ?", s.ID).Updates(map[string]any{
		"name":        m.Name,
		"domain":      m.Domain,
		"stage":       m.Stage,
		"funding":     m.Funding,
		"description": m.Description,
		"tags":        m.Tags,
		"logo":        m.Logo,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrStartupNotFound
	}
	return nil
}

// Search はQueryを名前、ドメイン、説明、タグに対して大文字小文字を区別せず照合します。
// DomainとStageは大文字小文字を区別しない完全一致です。新しい順に返します。
func (r *startupRepository) Search(ctx context.Context, f entity.Filter) ([]entity.Startup, error) {
	q := r.db.WithContext(ctx).Model(&StartupModel{})
	if f.Query != "" {
		like := "%" + escapeLike(strings.ToLower(f.Query)) + "%"
		q = q.Where(
			`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(domain) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(CAST(tags AS TEXT)) LIKE ? ESCAPE '\')`,
			like, like, like, like,
		)
	}
	if f.Domain != "" {
		q = q.Where("LOWER(domain) = ?", strings.ToLower(f.Domain))
	}
	if f.Stage != "" {
		q = q.Where("LOWER(stage) = ?", strings.ToLower(f.Stage))
	}
	var rows []StartupModel
	if err := q.Order("created_at DESC").Limit(searchLimit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

// escapeLike は入力が文字通り一致するようにLIKEのワイルドカードをエスケープします。
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
