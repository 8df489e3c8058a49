// Package handler はdecisionフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pitch_backend/internal/api"
	"pitch_backend/internal/feature/decision/domain/entity"
	"pitch_backend/internal/feature/decision/usecase"
	pitchentity "pitch_backend/internal/feature/pitch/domain/entity"
	profileentity "pitch_backend/internal/feature/profile/domain/entity"
	jwtmw "pitch_backend/internal/platform/jwt"
)

// DecisionUsecase は投資判断のユースケースを定義します。
type DecisionUsecase interface {
	Decide(ctx context.Context, caller pitchentity.Caller, pitchID uuid.UUID, in entity.Input) (*entity.Decision, error)
	ListForPitch(ctx context.Context, caller pitchentity.Caller, pitchID uuid.UUID) ([]entity.Decision, error)
	ListMine(ctx context.Context, caller pitchentity.Caller) ([]entity.Decision, error)
}

// DecisionHandler は投資判断のHTTPリクエストを処理します。
type DecisionHandler struct {
	uc DecisionUsecase
}

// NewDecisionHandler はDecisionHandlerの新しいインスタンスを生成します。
func NewDecisionHandler(uc DecisionUsecase) *DecisionHandler {
	return &DecisionHandler{uc: uc}
}

// Decide は投資家の判断を登録・更新します。
//
// エンドポイント: PUT /pitches/:id/decision
func (h *DecisionHandler) Decide(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	pitchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid pitch id"})
		return
	}
	var req api.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("decision validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	d, err := h.uc.Decide(c.Request.Context(), caller, pitchID, entity.Input{
		Status:        entity.Status(req.Status),
		GrantedAmount: req.GrantedAmount,
		Feedback:      req.Feedback,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(d))
}

// ListForPitch はピッチに対する判断一覧を返します。
//
// エンドポイント: GET /pitches/:id/decisions
func (h *DecisionHandler) ListForPitch(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	pitchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid pitch id"})
		return
	}
	list, err := h.uc.ListForPitch(c.Request.Context(), caller, pitchID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponses(list))
}

// ListMine は投資家自身の判断一覧を返します。
//
// エンドポイント: GET /me/decisions
func (h *DecisionHandler) ListMine(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	list, err := h.uc.ListMine(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponses(list))
}

func callerFrom(c *gin.Context) (pitchentity.Caller, bool) {
	userID, ok := jwtmw.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return pitchentity.Caller{}, false
	}
	return pitchentity.Caller{ID: userID, Role: profileentity.Role(jwtmw.RoleFrom(c))}, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidDecision):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrForbidden):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "forbidden"})
	case errors.Is(err, usecase.ErrPitchNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "pitch analysis not found"})
	case errors.Is(err, usecase.ErrAnalysisIncomplete):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "analysis is not completed yet"})
	default:
		slog.Error("decision request failed", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
	}
}

func toResponse(d *entity.Decision) api.DecisionResponse {
	return api.DecisionResponse{
		ID:              d.ID,
		PitchAnalysisID: d.PitchAnalysisID,
		InvestorID:      d.InvestorID,
		Status:          string(d.Status),
		GrantedAmount:   d.GrantedAmount,
		Feedback:        d.Feedback,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func toResponses(list []entity.Decision) []api.DecisionResponse {
	out := make([]api.DecisionResponse, 0, len(list))
	for i := range list {
		out = append(out, toResponse(&list[i]))
	}
	return out
}
