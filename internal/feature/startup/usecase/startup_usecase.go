package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"pitch_backend/internal/feature/startup/domain/entity"
	"pitch_backend/internal/shared/textutil"
)

// maxTags はスタートアップに付けられるタグの最大数です。
const maxTags = 20

// StartupRepository はスタートアップの永続化を抽象化します。
type StartupRepository interface {
	Create(ctx context.Context, s *entity.Startup) error
	// FindByID はスタートアップが存在しない場合ErrStartupNotFoundを返します。
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Startup, error)
	// FindByOwner はユーザーがスタートアップを持たない場合ErrStartupNotFoundを返します。
	FindByOwner(ctx context.Context, userID uuid.UUID) (*entity.Startup, error)
	Update(ctx context.Context, s *entity.Startup) error
	Search(ctx context.Context, f entity.Filter) ([]entity.Startup, error)
}

// SavedStartupRepository abstracts the user ↔ startup bookmark links.
type SavedStartupRepository interface {
	// Toggle は保存済みなら解除し、未保存なら保存します。
	// 戻り値は操作後に保存済みかどうかです。
	Toggle(ctx context.Context, userID, startupID uuid.UUID) (bool, error)
	ListSaved(ctx context.Context, userID uuid.UUID) ([]entity.Startup, error)
}

// startupUsecase はスタートアップディレクトリのユースケースを実装します。
type startupUsecase struct {
	startups StartupRepository
	saved    SavedStartupRepository
}

// NewStartupUsecase はstartupUsecaseの新しいインスタンスを生成します。
func NewStartupUsecase(startups StartupRepository, saved SavedStartupRepository) *startupUsecase {
	return &startupUsecase{startups: startups, saved: saved}
}

func normalizeFields(f entity.Fields) (entity.Fields, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Domain = strings.TrimSpace(f.Domain)
	f.Stage = strings.TrimSpace(f.Stage)
	f.Funding = strings.TrimSpace(f.Funding)
	f.Description = strings.TrimSpace(f.Description)
	f.Logo = strings.TrimSpace(f.Logo)
	if f.Name == "" || f.Domain == "" || f.Stage == "" || f.Funding == "" || f.Description == "" {
		return f, fmt.Errorf("%w: name, domain, stage, funding and description are required", ErrInvalidStartup)
	}
	if f.Logo == "" {
		f.Logo = entity.DefaultLogo
	}
	f.Tags = textutil.NormalizeTags(f.Tags)
	if len(f.Tags) > maxTags {
		return f, fmt.Errorf("%w: at most %d tags", ErrInvalidStartup, maxTags)
	}
	return f, nil
}

// Create は創業者のスタートアップを登録します。創業者1人につき1社までです。
func (u *startupUsecase) Create(ctx context.Context, ownerID uuid.UUID, f entity.Fields) (*entity.Startup, error) {
	f, err := normalizeFields(f)
	if err != nil {
		return nil, err
	}
	if _, err := u.startups.FindByOwner(ctx, ownerID); err == nil {
		return nil, ErrStartupExists
	} else if !errors.Is(err, ErrStartupNotFound) {
		return nil, err
	}

	s := &entity.Startup{ID: uuid.New(), UserID: ownerID}
	apply(s, f)
	if err := u.startups.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("create startup: %w", err)
	}
	slog.Info("startup created", "startup_id", s.ID, "user_id", ownerID)
	return s, nil
}

// Get はIDでスタートアップを返します。
func (u *startupUsecase) Get(ctx context.Context, id uuid.UUID) (*entity.Startup, error) {
	return u.startups.FindByID(ctx, id)
}

// GetMine は呼び出し元のスタートアップを返します。
func (u *startupUsecase) GetMine(ctx context.Context, ownerID uuid.UUID) (*entity.Startup, error) {
	return u.startups.FindByOwner(ctx, ownerID)
}

// Update は編集可能な項目を上書きします。更新できるのは所有者のみです。
func (u *startupUsecase) Update(ctx context.Context, callerID, id uuid.UUID, f entity.Fields) (*entity.Startup, error) {
	f, err := normalizeFields(f)
	if err != nil {
		return nil, err
	}
	s, err := u.startups.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.UserID != callerID {
		return nil, ErrForbidden
	}
	apply(s, f)
	if err := u.startups.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("update startup: %w", err)
	}
	return s, nil
}

// Search はfに一致するディレクトリのエントリを返します。
func (u *startupUsecase) Search(ctx context.Context, f entity.Filter) ([]entity.Startup, error) {
	f.Query = strings.TrimSpace(f.Query)
	f.Domain = strings.TrimSpace(f.Domain)
	f.Stage = strings.TrimSpace(f.Stage)
	return u.startups.Search(ctx, f)
}

// ToggleSave は呼び出し元のスタートアップ保存を切り替えます。
func (u *startupUsecase) ToggleSave(ctx context.Context, userID, startupID uuid.UUID) (bool, error) {
	if _, err := u.startups.FindByID(ctx, startupID); err != nil {
		return false, err
	}
	return u.saved.Toggle(ctx, userID, startupID)
}

// ListSaved は呼び出し元が保存したスタートアップを返します。
func (u *startupUsecase) ListSaved(ctx context.Context, userID uuid.UUID) ([]entity.Startup, error) {
	return u.saved.ListSaved(ctx, userID)
}

func apply(s *entity.Startup, f entity.Fields) {
	s.Name = f.Name
	s.Domain = f.Domain
	s.Stage = f.Stage
	s.Funding = f.Funding
	s.Description = f.Description
	s.Tags = f.Tags
	s.Logo = f.Logo
}
