package adapters

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pitch_backend/internal/feature/startup/domain/entity"
	"pitch_backend/internal/feature/startup/usecase"
)

// SavedStartupModel はsaved_startupsテーブルのGORMモデルです。
type SavedStartupModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:saved_user_startup,priority:1"`
	StartupID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:saved_user_startup,priority:2"`
	CreatedAt time.Time
}

// TableName はGORMが使用するテーブル名を返します。
func (SavedStartupModel) TableName() string {
	return "saved_startups"
}

type savedStartupRepository struct {
	db *gorm.DB
}

var _ usecase.SavedStartupRepository = (*savedStartupRepository)(nil)

// NewSavedStartupRepository はsavedStartupRepositoryの新しいインスタンスを生成します。
func NewSavedStartupRepository(db *gorm.DB) *savedStartupRepository {
	return &savedStartupRepository{db: db}
}

// Toggle は保存済みなら削除し、未保存なら追加します。
func (r *savedStartupRepository) Toggle(ctx context.Context, userID, startupID uuid.UUID) (bool, error) {
	saved := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND startup_id = ?", userID, startupID).Delete(&SavedStartupModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		saved = true
		return tx.Create(&SavedStartupModel{ID: uuid.New(), UserID: userID, StartupID: startupID}).Error
	})
	if err != nil {
		return false, err
	}
	return saved, nil
}

// ListSaved はユーザーが保存したスタートアップを保存の新しい順に返します。
func (r *savedStartupRepository) ListSaved(ctx context.Context, userID uuid.UUID) ([]entity.Startup, error) {
	var rows []StartupModel
	err := r.db.WithContext(ctx).
		Model(&StartupModel{}).
		Select("startups.*").
		Joins("JOIN saved_startups ON saved_startups.startup_id = startups.id").
		Where("saved_startups.user_id = ?", userID).
		Order("saved_startups.created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}
