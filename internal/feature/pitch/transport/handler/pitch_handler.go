// Package handler はpitchフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pitch_backend/internal/api"
	analyzerhandler "pitch_backend/internal/feature/analyzer/transport/handler"
	"pitch_backend/internal/feature/pitch/domain/entity"
	"pitch_backend/internal/feature/pitch/usecase"
	profileentity "pitch_backend/internal/feature/profile/domain/entity"
	jwtmw "pitch_backend/internal/platform/jwt"
)

// multipartOverhead はフォームフィールドとバウンダリ分の余裕です。
const multipartOverhead = 1 << 20

// PitchUsecase はピッチ分析操作のユースケースを定義します。
type PitchUsecase interface {
	Upload(ctx context.Context, caller entity.Caller, startupID uuid.UUID, file usecase.UploadFile, meta entity.UploadMeta) (*entity.PitchAnalysis, error)
	Retry(ctx context.Context, caller entity.Caller, pitchID uuid.UUID) (*entity.PitchAnalysis, error)
	Get(ctx context.Context, caller entity.Caller, id uuid.UUID) (*entity.PitchAnalysis, error)
	ListByStartup(ctx context.Context, caller entity.Caller, startupID uuid.UUID) ([]entity.PitchAnalysis, error)
	ListCompleted(ctx context.Context, caller entity.Caller) ([]entity.PitchWithStartup, error)
}

// PitchHandler はピッチのアップロードと閲覧のHTTPリクエストを処理します。
type PitchHandler struct {
	uc PitchUsecase
}

// NewPitchHandler はPitchHandlerの新しいインスタンスを生成します。
func NewPitchHandler(uc PitchUsecase) *PitchHandler {
	return &PitchHandler{uc: uc}
}

// Upload はピッチファイルを受け取り、保存して分析します。
//
// エンドポイント: POST /startups/:id/pitches (multipart/form-data)
//   - 201: 分析完了
//   - 400: ファイル種別・サイズ・フォーム不正
//   - 429 / 402: LLMのレート制限・支払い要求 (分析は failed として保存済み)
//   - 502: その他の分析失敗
func (h *PitchHandler) Upload(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	startupID, ok := pathID(c, "invalid startup id")
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, usecase.MaxFileSize+multipartOverhead)
	header, err := c.FormFile("file")
	if err != nil {
		slog.Warn("pitch upload without readable file", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "file is required (PDF, DOCX or TXT, max 10MB)"})
		return
	}
	if header.Size > usecase.MaxFileSize {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "file must be at most 10MB"})
		return
	}
	f, err := header.Open()
	if err != nil {
		slog.Error("failed to open uploaded file", "error", err)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "could not read file"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, usecase.MaxFileSize+1))
	if err != nil {
		slog.Error("failed to read uploaded file", "error", err)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "could not read file"})
		return
	}

	p, err := h.uc.Upload(c.Request.Context(), caller, startupID,
		usecase.UploadFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		},
		entity.UploadMeta{
			Title:          c.PostForm("title"),
			Description:    c.PostForm("description"),
			Category:       c.PostForm("category"),
			RequiredAmount: c.PostForm("required_amount"),
		},
	)
	if err != nil {
		writeError(c, err, p)
		return
	}
	c.JSON(http.StatusCreated, ToPitchResponse(p, nil))
}

// Retry は失敗・期限切れの分析を再実行します。
//
// エンドポイント: POST /pitches/:id/retry
func (h *PitchHandler) Retry(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invalid pitch id")
	if !ok {
		return
	}
	p, err := h.uc.Retry(c.Request.Context(), caller, id)
	if err != nil {
		writeError(c, err, p)
		return
	}
	c.JSON(http.StatusOK, ToPitchResponse(p, nil))
}

// Get は分析を1件返します。
//
// エンドポイント: GET /pitches/:id
func (h *PitchHandler) Get(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invalid pitch id")
	if !ok {
		return
	}
	p, err := h.uc.Get(c.Request.Context(), caller, id)
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, ToPitchResponse(p, nil))
}

// ListByStartup はスタートアップの分析一覧を返します。
//
// エンドポイント: GET /startups/:id/pitches
func (h *PitchHandler) ListByStartup(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	startupID, ok := pathID(c, "invalid startup id")
	if !ok {
		return
	}
	list, err := h.uc.ListByStartup(c.Request.Context(), caller, startupID)
	if err != nil {
		writeError(c, err, nil)
		return
	}
	out := make([]api.PitchAnalysisResponse, 0, len(list))
	for i := range list {
		out = append(out, ToPitchResponse(&list[i], nil))
	}
	c.JSON(http.StatusOK, out)
}

// ListCompleted は投資家向けに完了済み分析をスタートアップ概要付きで返します。
//
// エンドポイント: GET /pitches
func (h *PitchHandler) ListCompleted(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	list, err := h.uc.ListCompleted(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err, nil)
		return
	}
	out := make([]api.PitchAnalysisResponse, 0, len(list))
	for i := range list {
		out = append(out, ToPitchResponse(&list[i].Pitch, &list[i].Startup))
	}
	c.JSON(http.StatusOK, out)
}

func callerFrom(c *gin.Context) (entity.Caller, bool) {
	userID, ok := jwtmw.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return entity.Caller{}, false
	}
	return entity.Caller{ID: userID, Role: profileentity.Role(jwtmw.RoleFrom(c))}, true
}

func pathID(c *gin.Context, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: msg})
		return uuid.Nil, false
	}
	return id, true
}

// writeError はエラーをHTTPステータスに変換します。
// 分析失敗時は保存済みの分析もレスポンスに含めます。
func writeError(c *gin.Context, err error, p *entity.PitchAnalysis) {
	switch {
	case errors.Is(err, usecase.ErrInvalidUpload):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrForbidden):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "forbidden"})
	case errors.Is(err, usecase.ErrPitchNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "pitch analysis not found"})
	case errors.Is(err, usecase.ErrStartupNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "startup not found"})
	case errors.Is(err, usecase.ErrNotRetryable):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrConcurrentUpdate):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "analysis is already being processed"})
	case errors.Is(err, usecase.ErrExtractionFailed):
		c.JSON(http.StatusUnprocessableEntity, failure("Could not read text from the pitch file", p))
	case errors.Is(err, usecase.ErrAnalysisFailed):
		status, msg := analyzerhandler.StatusForError(err)
		if status != http.StatusTooManyRequests && status != http.StatusPaymentRequired {
			status, msg = http.StatusBadGateway, "Failed to analyze pitch"
		}
		c.JSON(status, failure(msg, p))
	default:
		slog.Error("pitch request failed", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
	}
}

func failure(msg string, p *entity.PitchAnalysis) api.PitchFailureResponse {
	out := api.PitchFailureResponse{Error: msg}
	if p != nil {
		resp := ToPitchResponse(p, nil)
		out.Analysis = &resp
	}
	return out
}

// ToPitchResponse はエンティティをレスポンスに変換します。未完了の分析はスコアが全てnullになります。
func ToPitchResponse(p *entity.PitchAnalysis, startup *entity.StartupSummary) api.PitchAnalysisResponse {
	out := api.PitchAnalysisResponse{
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
	if p.Status == entity.StatusCompleted && p.Result != nil {
		out.ScoreFields = analyzerhandler.ToScoreFields(p.Result)
		source := string(p.Result.Source)
		out.Source = &source
	}
	if startup != nil {
		out.Startup = &api.StartupSummary{
			ID:     startup.ID,
			Name:   startup.Name,
			Domain: startup.Domain,
			Stage:  startup.Stage,
			Logo:   startup.Logo,
		}
	}
	return out
}
