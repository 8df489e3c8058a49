package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	analyzerentity "pitch_backend/internal/feature/analyzer/domain/entity"
	analyzerusecase "pitch_backend/internal/feature/analyzer/usecase"
	"pitch_backend/internal/feature/pitch/domain/entity"
	profileentity "pitch_backend/internal/feature/profile/domain/entity"
	startupentity "pitch_backend/internal/feature/startup/domain/entity"
	startupusecase "pitch_backend/internal/feature/startup/usecase"
	"pitch_backend/internal/platform/storage"
)

const (
	maxTitleRunes          = 200
	minDescriptionRunes    = 10
	maxDescriptionRunes    = 1000
	maxCategoryRunes       = 100
	maxRequiredAmountRunes = 50

	// DefaultAnalysisTimeout は1件のピッチのテキスト抽出と分析にかける時間の上限です。
	DefaultAnalysisTimeout = 2 * time.Minute
)

// PitchRepository はピッチ分析の永続化を抽象化します。
type PitchRepository interface {
	Create(ctx context.Context, p *entity.PitchAnalysis) error
	// FindByID は分析が存在しない場合ErrPitchNotFoundを返します。
	FindByID(ctx context.Context, id uuid.UUID) (*entity.PitchAnalysis, error)
	// Save は保存済みのステータスがexpectedと一致する場合のみpを保存し、
	// 一致しない場合はErrConcurrentUpdateを返します。
	Save(ctx context.Context, p *entity.PitchAnalysis, expected entity.Status) error
	ListByStartup(ctx context.Context, startupID uuid.UUID) ([]entity.PitchAnalysis, error)
	// ListCompleted は完了済みの分析をアップロードの新しい順に返します。
	ListCompleted(ctx context.Context) ([]entity.PitchWithStartup, error)
	// ExpireStale はolderThanより前に更新されたpending/processingの行を期限切れにします。
	ExpireStale(ctx context.Context, olderThan time.Time, reason string) (int64, error)
	CountStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// StartupLookup はstartup機能が管理するスタートアップを読み取ります。
type StartupLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*startupentity.Startup, error)
}

// ObjectStore はアップロードされたファイルを保存します。
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// TextExtractor は保存されたピッチファイルをプレーンテキストに変換します。
type TextExtractor interface {
	Extract(ctx context.Context, contentType string, data []byte) (string, error)
}

// PitchAnalyzer はピッチ内容を採点します。
type PitchAnalyzer interface {
	Analyze(ctx context.Context, in analyzerentity.PitchInput) (*analyzerentity.ScoreResult, error)
}

// UploadFile は受信したピッチ資料です。
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// pitchUsecase はピッチ分析のアップロード、分析、参照を取りまとめます。
type pitchUsecase struct {
	pitches   PitchRepository
	startups  StartupLookup
	store     ObjectStore
	extractor TextExtractor
	analyzer  PitchAnalyzer
	timeout   time.Duration
	now       func() time.Time
}

// NewPitchUsecase はpitchUsecaseの新しいインスタンスを生成します。timeoutが0以下ならDefaultAnalysisTimeoutを使います。
func NewPitchUsecase(
	pitches PitchRepository,
	startups StartupLookup,
	store ObjectStore,
	extractor TextExtractor,
	analyzer PitchAnalyzer,
	timeout time.Duration,
) *pitchUsecase {
	if timeout <= 0 {
		timeout = DefaultAnalysisTimeout
	}
	return &pitchUsecase{
		pitches:   pitches,
		startups:  startups,
		store:     store,
		extractor: extractor,
		analyzer:  analyzer,
		timeout:   timeout,
		now:       time.Now,
	}
}

// Upload は創業者のピッチファイルを保存して分析します。
//
// 行が作成された場合は分析自体が失敗しても非nilの分析を返し、
// そのときのエラーはErrAnalysisFailedまたはErrExtractionFailedをラップします。
func (u *pitchUsecase) Upload(ctx context.Context, caller entity.Caller, startupID uuid.UUID, file UploadFile, meta entity.UploadMeta) (*entity.PitchAnalysis, error) {
	if caller.Role != profileentity.RoleFounder {
		return nil, ErrForbidden
	}
	meta, err := normalizeMeta(meta)
	if err != nil {
		return nil, err
	}
	fileName := storage.BaseName(strings.TrimSpace(file.Name))
	contentType := DetectContentType(fileName, file.ContentType, file.Data)
	if !Allowed(contentType) {
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrInvalidUpload, contentType)
	}
	if len(file.Data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidUpload)
	}
	if len(file.Data) > MaxFileSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidUpload, MaxFileSize)
	}

	startup, err := u.ownedStartup(ctx, caller, startupID)
	if err != nil {
		return nil, err
	}

	uploadedAt := u.now()
	key := storage.ObjectPath(caller.ID, startupID, uploadedAt, fileName)
	if err := u.store.Put(ctx, key, contentType, file.Data); err != nil {
		return nil, fmt.Errorf("store pitch file: %w", err)
	}

	p := entity.NewPitchAnalysis(startupID, fileName, key, contentType, meta, uploadedAt)
	if err := u.pitches.Create(ctx, p); err != nil {
		// 行が無いファイルは二度と参照されないため削除する
		if delErr := u.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			slog.Error("failed to remove orphaned pitch file", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("create pitch analysis: %w", err)
	}
	slog.Info("pitch uploaded", "pitch_id", p.ID, "startup_id", startupID, "content_type", contentType, "size", len(file.Data))

	return u.process(ctx, p, startup, file.Data, p.StartProcessing, entity.StatusPending)
}

// Retry は失敗または期限切れの分析を所有者の創業者のために再実行します。
func (u *pitchUsecase) Retry(ctx context.Context, caller entity.Caller, pitchID uuid.UUID) (*entity.PitchAnalysis, error) {
	p, err := u.pitches.FindByID(ctx, pitchID)
	if err != nil {
		return nil, err
	}
	startup, err := u.ownedStartup(ctx, caller, p.StartupID)
	if err != nil {
		return nil, err
	}
	if !p.CanRetry() {
		if p.Attempts >= entity.MaxAttempts {
			return nil, fmt.Errorf("%w: %d attempts used", ErrNotRetryable, p.Attempts)
		}
		return nil, fmt.Errorf("%w: status is %s", ErrNotRetryable, p.Status)
	}
	data, err := u.store.Get(ctx, p.FilePath)
	if err != nil {
		return nil, fmt.Errorf("load pitch file: %w", err)
	}
	return u.process(ctx, p, startup, data, p.Retry, p.Status)
}

// process はpをprocessingにし、completedまたはfailedで確定させます。
// ctxのキャンセルから切り離して実行するため、クライアントが切断しても行は残りません。
func (u *pitchUsecase) process(
	ctx context.Context,
	p *entity.PitchAnalysis,
	startup *startupentity.Startup,
	data []byte,
	begin func() error,
	from entity.Status,
) (*entity.PitchAnalysis, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.timeout)
	defer cancel()

	if err := begin(); err != nil {
		return p, err
	}
	if err := u.pitches.Save(ctx, p, from); err != nil {
		return p, fmt.Errorf("mark processing: %w", err)
	}

	text, err := u.extractor.Extract(ctx, p.ContentType, data)
	if err != nil {
		slog.Warn("pitch text extraction failed", "pitch_id", p.ID, "error", err)
		return p, u.fail(ctx, p, "text extraction failed", fmt.Errorf("%w: %w", ErrExtractionFailed, err))
	}

	result, err := u.analyzer.Analyze(ctx, analyzerentity.PitchInput{
		PitchContent: BuildPitchContent(startup, text),
		StartupName:  startup.Name,
		Domain:       startup.Domain,
	})
	if err != nil {
		slog.Warn("pitch analysis failed", "pitch_id", p.ID, "attempt", p.Attempts, "error", err)
		return p, u.fail(ctx, p, failureReason(err), fmt.Errorf("%w: %w", ErrAnalysisFailed, err))
	}

	if err := p.Complete(result); err != nil {
		return p, err
	}
	if err := u.pitches.Save(ctx, p, entity.StatusProcessing); err != nil {
		return p, fmt.Errorf("save analysis result: %w", err)
	}
	slog.Info("pitch analysed", "pitch_id", p.ID, "source", result.Source, "attempt", p.Attempts)
	return p, nil
}

func (u *pitchUsecase) fail(ctx context.Context, p *entity.PitchAnalysis, reason string, cause error) error {
	if err := p.Fail(reason); err != nil {
		return errors.Join(cause, err)
	}
	if err := u.pitches.Save(ctx, p, entity.StatusProcessing); err != nil {
		slog.Error("failed to persist failed analysis", "pitch_id", p.ID, "error", err)
		return errors.Join(cause, err)
	}
	return cause
}

// Get は呼び出し元（所有者の創業者または投資家）が参照できる分析を返します。
func (u *pitchUsecase) Get(ctx context.Context, caller entity.Caller, id uuid.UUID) (*entity.PitchAnalysis, error) {
	p, err := u.pitches.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.canView(ctx, caller, p.StartupID); err != nil {
		return nil, err
	}
	return p, nil
}

// ListByStartup はスタートアップの分析をアップロードの新しい順に返します。
func (u *pitchUsecase) ListByStartup(ctx context.Context, caller entity.Caller, startupID uuid.UUID) ([]entity.PitchAnalysis, error) {
	if err := u.canView(ctx, caller, startupID); err != nil {
		return nil, err
	}
	return u.pitches.ListByStartup(ctx, startupID)
}

// ListCompleted は投資家向けに完了済みの分析をスタートアップ情報付きで返します。
func (u *pitchUsecase) ListCompleted(ctx context.Context, caller entity.Caller) ([]entity.PitchWithStartup, error) {
	if caller.Role != profileentity.RoleInvestor {
		return nil, ErrForbidden
	}
	return u.pitches.ListCompleted(ctx)
}

func (u *pitchUsecase) canView(ctx context.Context, caller entity.Caller, startupID uuid.UUID) error {
	startup, err := u.findStartup(ctx, startupID)
	if err != nil {
		return err
	}
	if caller.Role == profileentity.RoleInvestor || startup.UserID == caller.ID {
		return nil
	}
	return ErrForbidden
}

func (u *pitchUsecase) ownedStartup(ctx context.Context, caller entity.Caller, startupID uuid.UUID) (*startupentity.Startup, error) {
	startup, err := u.findStartup(ctx, startupID)
	if err != nil {
		return nil, err
	}
	if startup.UserID != caller.ID {
		return nil, ErrForbidden
	}
	return startup, nil
}

func (u *pitchUsecase) findStartup(ctx context.Context, id uuid.UUID) (*startupentity.Startup, error) {
	s, err := u.startups.FindByID(ctx, id)
	if errors.Is(err, startupusecase.ErrStartupNotFound) {
		return nil, ErrStartupNotFound
	}
	return s, err
}

// BuildPitchContent は分析に送るテキストを組み立てます。
func BuildPitchContent(s *startupentity.Startup, documentText string) string {
	return strings.TrimSpace(fmt.Sprintf("Startup: %s\nDescription: %s\n\nPitch Document:\n%s",
		s.Name, s.Description, strings.TrimSpace(documentText)))
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, analyzerusecase.ErrRateLimited):
		return "rate limit exceeded"
	case errors.Is(err, analyzerusecase.ErrPaymentRequired):
		return "payment required"
	case errors.Is(err, context.DeadlineExceeded):
		return "analysis timed out"
	default:
		return "analysis provider error"
	}
}

func normalizeMeta(m entity.UploadMeta) (entity.UploadMeta, error) {
	m.Title = strings.TrimSpace(m.Title)
	m.Description = strings.TrimSpace(m.Description)
	m.Category = strings.TrimSpace(m.Category)
	m.RequiredAmount = strings.TrimSpace(m.RequiredAmount)

	switch {
	case m.Title == "":
		return m, fmt.Errorf("%w: title is required", ErrInvalidUpload)
	case utf8.RuneCountInString(m.Title) > maxTitleRunes:
		return m, fmt.Errorf("%w: title must be at most %d characters", ErrInvalidUpload, maxTitleRunes)
	case utf8.RuneCountInString(m.Description) < minDescriptionRunes:
		return m, fmt.Errorf("%w: description must be at least %d characters", ErrInvalidUpload, minDescriptionRunes)
	case utf8.RuneCountInString(m.Description) > maxDescriptionRunes:
		return m, fmt.Errorf("%w: description must be at most %d characters", ErrInvalidUpload, maxDescriptionRunes)
	case utf8.RuneCountInString(m.Category) > maxCategoryRunes:
		return m, fmt.Errorf("%w: category must be at most %d characters", ErrInvalidUpload, maxCategoryRunes)
	case utf8.RuneCountInString(m.RequiredAmount) > maxRequiredAmountRunes:
		return m, fmt.Errorf("%w: required amount must be at most %d characters", ErrInvalidUpload, maxRequiredAmountRunes)
	}
	return m, nil
}
