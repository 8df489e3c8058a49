// Package handler はprofileフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"pitch_backend/internal/api"
	"pitch_backend/internal/feature/profile/domain/entity"
	"pitch_backend/internal/feature/profile/usecase"
	jwtmw "pitch_backend/internal/platform/jwt"
)

// ProfileUsecase はプロフィール操作のユースケースを定義します。
type ProfileUsecase interface {
	Get(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)
	Update(ctx context.Context, userID uuid.UUID, p entity.Preferences) (*entity.Profile, error)
}

// ProfileHandler は /me/profile を処理します。
type ProfileHandler struct {
	uc ProfileUsecase
}

// NewProfileHandler はProfileHandlerの新しいインスタンスを生成します。
func NewProfileHandler(uc ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

// GetMe は認証ユーザーのプロフィールを返します。
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, ok := jwtmw.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	p, err := h.uc.Get(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ToProfileResponse(p))
}

// UpdateMe は認証ユーザーのプロフィールを更新します。
// - バリデーションエラー時は400を返却
// - 成功時は更新後のプロフィールで200を返却
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	userID, ok := jwtmw.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	var req api.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("profile update validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}
	p, err := h.uc.Update(c.Request.Context(), userID, entity.Preferences{
		FullName:            req.FullName,
		InvestmentFocus:     req.InvestmentFocus,
		MinInvestmentAmount: req.MinInvestmentAmount,
		MaxInvestmentAmount: req.MaxInvestmentAmount,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	slog.Info("profile updated", "user_id", userID)
	c.JSON(http.StatusOK, ToProfileResponse(p))
}

func (h *ProfileHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "profile not found"})
	case errors.Is(err, usecase.ErrInvalidPreferences):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	default:
		slog.Error("profile request failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
	}
}

// ToProfileResponse はエンティティをレスポンスに変換します。
func ToProfileResponse(p *entity.Profile) api.ProfileResponse {
	focus := p.InvestmentFocus
	if focus == nil {
		focus = []string{}
	}
	return api.ProfileResponse{
		ID:                  p.ID,
		Email:               openapi_types.Email(p.Email),
		FullName:            p.FullName,
		Role:                string(p.Role),
		InvestmentFocus:     focus,
		MinInvestmentAmount: p.MinInvestmentAmount,
		MaxInvestmentAmount: p.MaxInvestmentAmount,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}
