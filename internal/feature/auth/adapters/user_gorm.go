// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pitch_backend/internal/feature/auth/domain/entity"
	"pitch_backend/internal/feature/auth/usecase"
	profileadapters "pitch_backend/internal/feature/profile/adapters"
	profileentity "pitch_backend/internal/feature/profile/domain/entity"
	"pitch_backend/internal/platform/db"
)

// UserModel はusersテーブルのGORMモデルです。
type UserModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"uniqueIndex;size:255;not null"`
	Password  string    `gorm:"size:255;not null"`
	Role      string    `gorm:"size:16;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName はGORMが使用するテーブル名を返します。
func (UserModel) TableName() string {
	return "users"
}

func (m *UserModel) toEntity() *entity.User {
	return &entity.User{
		ID:        m.ID,
		Email:     m.Email,
		Password:  m.Password,
		Role:      profileentity.Role(m.Role),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// userRepository はUserRepositoryインターフェースのgorm実装です。
type userRepository struct {
	db *gorm.DB
}

// userRepositoryがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userRepository)(nil)

// NewUserRepository は指定されたgorm.DB接続でuserRepositoryの新しいインスタンスを生成します。
func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

// CreateWithProfile はユーザーとプロフィールを同一トランザクションで作成します。
// メールアドレスが重複している場合、usecase.ErrEmailAlreadyExistsを返します。
func (r *userRepository) CreateWithProfile(ctx context.Context, u *entity.User, fullName string) error {
	if u == nil {
		return errors.New("user is nil")
	}
	m := &UserModel{ID: u.ID, Email: u.Email, Password: u.Password, Role: string(u.Role)}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		profile := profileadapters.ProfileModelFromEntity(&profileentity.Profile{
			ID:       u.ID,
			Email:    u.Email,
			FullName: fullName,
			Role:     u.Role,
		})
		return tx.Create(profile).Error
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	u.CreatedAt, u.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return m.toEntity(), nil
}
