package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"pitch_backend/internal/feature/profile/domain/entity"
	"pitch_backend/internal/shared/textutil"
)

// maxFocusTags は投資分野タグの最大数です。
const maxFocusTags = 20

// ProfileRepository はプロフィールの永続化レイヤーを抽象化します。
type ProfileRepository interface {
	// FindByID はプロフィールが存在しない場合ErrProfileNotFoundを返します。
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
	// UpdatePreferences は編集可能な項目を上書きし、保存後のプロフィールを返します。
	UpdatePreferences(ctx context.Context, id uuid.UUID, p entity.Preferences) (*entity.Profile, error)
}

// profileUsecase はプロフィールの参照と本人による更新を実装します。
type profileUsecase struct {
	repo ProfileRepository
}

// NewProfileUsecase はprofileUsecaseの新しいインスタンスを生成します。
func NewProfileUsecase(repo ProfileRepository) *profileUsecase {
	return &profileUsecase{repo: repo}
}

// Get は呼び出し元のプロフィールを返します。
func (u *profileUsecase) Get(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	return u.repo.FindByID(ctx, userID)
}

// Update は呼び出し元の投資条件を検証して保存します。
func (u *profileUsecase) Update(ctx context.Context, userID uuid.UUID, p entity.Preferences) (*entity.Profile, error) {
	p.FullName = strings.TrimSpace(p.FullName)
	if p.FullName == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrInvalidPreferences)
	}
	if p.MinInvestmentAmount != nil && *p.MinInvestmentAmount < 0 {
		return nil, fmt.Errorf("%w: minimum amount must not be negative", ErrInvalidPreferences)
	}
	if p.MaxInvestmentAmount != nil && *p.MaxInvestmentAmount < 0 {
		return nil, fmt.Errorf("%w: maximum amount must not be negative", ErrInvalidPreferences)
	}
	if p.MinInvestmentAmount != nil && p.MaxInvestmentAmount != nil && *p.MinInvestmentAmount > *p.MaxInvestmentAmount {
		return nil, fmt.Errorf("%w: minimum amount exceeds maximum", ErrInvalidPreferences)
	}
	p.InvestmentFocus = textutil.NormalizeTags(p.InvestmentFocus)
	if len(p.InvestmentFocus) > maxFocusTags {
		return nil, fmt.Errorf("%w: at most %d focus tags", ErrInvalidPreferences, maxFocusTags)
	}
	return u.repo.UpdatePreferences(ctx, userID, p)
}
