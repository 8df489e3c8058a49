// Package handler はstartupフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pitch_backend/internal/api"
	"pitch_backend/internal/feature/startup/domain/entity"
	"pitch_backend/internal/feature/startup/usecase"
	jwtmw "pitch_backend/internal/platform/jwt"
)

// StartupUsecase はスタートアップ操作のユースケースを定義します。
type StartupUsecase interface {
	Create(ctx context.Context, ownerID uuid.UUID, f entity.Fields) (*entity.Startup, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Startup, error)
	GetMine(ctx context.Context, ownerID uuid.UUID) (*entity.Startup, error)
	Update(ctx context.Context, callerID, id uuid.UUID, f entity.Fields) (*entity.Startup, error)
	Search(ctx context.Context, f entity.Filter) ([]entity.Startup, error)
	ToggleSave(ctx context.Context, userID, startupID uuid.UUID) (bool, error)
	ListSaved(ctx context.Context, userID uuid.UUID) ([]entity.Startup, error)
}

// StartupHandler はスタートアップディレクトリのHTTPリクエストを処理します。
type StartupHandler struct {
	uc StartupUsecase
}

// NewStartupHandler はStartupHandlerの新しいインスタンスを生成します。
func NewStartupHandler(uc StartupUsecase) *StartupHandler {
	return &StartupHandler{uc: uc}
}

// List はディレクトリを検索します。
//
// エンドポイント: GET /startups?q=&domain=&stage=
func (h *StartupHandler) List(c *gin.Context) {
	list, err := h.uc.Search(c.Request.Context(), entity.Filter{
		Query:  c.Query("q"),
		Domain: c.Query("domain"),
		Stage:  c.Query("stage"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponses(list))
}

// Create は創業者のスタートアップを登録します。
//
// エンドポイント: POST /startups
func (h *StartupHandler) Create(c *gin.Context) {
	userID, ok := jwtmw.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	var req api.StartupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("startup validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}
	s, err := h.uc.Create(c.Request.Context(), userID, toFields(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ToStartupResponse(s))
}

// GetMine は認証ユーザーのスタートアップを返します。
//
// エンドポイント: GET /me/startup
func (h *StartupHandler) GetMine(c *gin.Context) {
	userID, ok := jwtmw.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	s, err := h.uc.GetMine(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ToStartupResponse(s))
}

// Get は指定IDのスタートアップを返します。
//
// エンドポイント: GET /startups/:id
func (h *StartupHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	s, err := h.uc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ToStartupResponse(s))
}

// Update はオーナーのみがスタートアップを更新できます。
//
// エンドポイント: PUT /startups/:id
func (h *StartupHandler) Update(c *gin.Context) {
	userID, ok := jwtmw.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req api.StartupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("startup validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}
	s, err := h.uc.Update(c.Request.Context(), userID, id, toFields(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ToStartupResponse(s))
}

// ToggleSave はスタートアップの保存状態を切り替えます。
//
// エンドポイント: POST /startups/:id/save
func (h *StartupHandler) ToggleSave(c *gin.Context) {
	userID, ok := jwtmw.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	saved, err := h.uc.ToggleSave(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.SaveToggleResponse{Saved: saved})
}

// ListSaved は保存済みスタートアップを返します。
//
// エンドポイント: GET /me/saved-startups
func (h *StartupHandler) ListSaved(c *gin.Context) {
	userID, ok := jwtmw.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	list, err := h.uc.ListSaved(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponses(list))
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid startup id"})
		return uuid.Nil, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidStartup):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrStartupNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "startup not found"})
	case errors.Is(err, usecase.ErrForbidden):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "forbidden"})
	case errors.Is(err, usecase.ErrStartupExists):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "you already have a startup"})
	default:
		slog.Error("startup request failed", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
	}
}

func toFields(req api.StartupRequest) entity.Fields {
	return entity.Fields{
		Name:        req.Name,
		Domain:      req.Domain,
		Stage:       req.Stage,
		Funding:     req.Funding,
		Description: req.Description,
		Tags:        req.Tags,
		Logo:        req.Logo,
	}
}

// ToStartupResponse はエンティティをレスポンスに変換します。
func ToStartupResponse(s *entity.Startup) api.StartupResponse {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	return api.StartupResponse{
		ID:          s.ID,
		UserID:      s.UserID,
		Name:        s.Name,
		Domain:      s.Domain,
		Stage:       s.Stage,
		Funding:     s.Funding,
		Description: s.Description,
		Tags:        tags,
		Logo:        s.Logo,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toResponses(list []entity.Startup) []api.StartupResponse {
	out := make([]api.StartupResponse, 0, len(list))
	for i := range list {
		out = append(out, ToStartupResponse(&list[i]))
	}
	return out
}
