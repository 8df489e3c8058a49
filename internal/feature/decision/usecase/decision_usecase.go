package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"pitch_backend/internal/feature/decision/domain/entity"
	pitchentity "pitch_backend/internal/feature/pitch/domain/entity"
	pitchusecase "pitch_backend/internal/feature/pitch/usecase"
	profileentity "pitch_backend/internal/feature/profile/domain/entity"
	startupentity "pitch_backend/internal/feature/startup/domain/entity"
)

// maxFeedbackRunes は投資家フィードバックの最大文字数です。
const maxFeedbackRunes = 5000

// DecisionRepository は投資判断の永続化を抽象化します。
type DecisionRepository interface {
	// Upsert はdを挿入するか、同じ投資家・同じピッチの判断を上書きします。
	Upsert(ctx context.Context, d *entity.Decision) (*entity.Decision, error)
	ListByPitch(ctx context.Context, pitchID uuid.UUID) ([]entity.Decision, error)
	ListByPitchAndInvestor(ctx context.Context, pitchID, investorID uuid.UUID) ([]entity.Decision, error)
	ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]entity.Decision, error)
}

// PitchLookup はピッチ分析を読み取ります。
type PitchLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*pitchentity.PitchAnalysis, error)
}

// StartupLookup はピッチの所有者を判定するためにスタートアップを読み取ります。
type StartupLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*startupentity.Startup, error)
}

// decisionUsecase は投資判断のユースケースを実装します。
type decisionUsecase struct {
	decisions DecisionRepository
	pitches   PitchLookup
	startups  StartupLookup
}

// NewDecisionUsecase はdecisionUsecaseの新しいインスタンスを生成します。
func NewDecisionUsecase(decisions DecisionRepository, pitches PitchLookup, startups StartupLookup) *decisionUsecase {
	return &decisionUsecase{decisions: decisions, pitches: pitches, startups: startups}
}

// Decide は完了済みの分析に対する呼び出し元の判断を記録します。後勝ちです。
func (u *decisionUsecase) Decide(ctx context.Context, caller pitchentity.Caller, pitchID uuid.UUID, in entity.Input) (*entity.Decision, error) {
	if caller.Role != profileentity.RoleInvestor {
		return nil, ErrForbidden
	}
	in, err := normalizeInput(in)
	if err != nil {
		return nil, err
	}
	p, err := u.findPitch(ctx, pitchID)
	if err != nil {
		return nil, err
	}
	if p.Status != pitchentity.StatusCompleted {
		return nil, fmt.Errorf("%w: status is %s", ErrAnalysisIncomplete, p.Status)
	}

	d, err := u.decisions.Upsert(ctx, &entity.Decision{
		ID:              uuid.New(),
		PitchAnalysisID: pitchID,
		InvestorID:      caller.ID,
		Status:          in.Status,
		GrantedAmount:   in.GrantedAmount,
		Feedback:        in.Feedback,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert decision: %w", err)
	}
	slog.Info("investment decision recorded", "pitch_id", pitchID, "investor_id", caller.ID, "status", d.Status)
	return d, nil
}

// ListForPitch は所有者の創業者には全ての判断を、投資家には本人の判断のみを返します。
func (u *decisionUsecase) ListForPitch(ctx context.Context, caller pitchentity.Caller, pitchID uuid.UUID) ([]entity.Decision, error) {
	p, err := u.findPitch(ctx, pitchID)
	if err != nil {
		return nil, err
	}
	if caller.Role == profileentity.RoleInvestor {
		return u.decisions.ListByPitchAndInvestor(ctx, pitchID, caller.ID)
	}
	startup, err := u.startups.FindByID(ctx, p.StartupID)
	if err != nil {
		return nil, fmt.Errorf("load startup: %w", err)
	}
	if startup.UserID != caller.ID {
		return nil, ErrForbidden
	}
	return u.decisions.ListByPitch(ctx, pitchID)
}

// ListMine は呼び出し元の投資家の判断を新しい順に返します。
func (u *decisionUsecase) ListMine(ctx context.Context, caller pitchentity.Caller) ([]entity.Decision, error) {
	if caller.Role != profileentity.RoleInvestor {
		return nil, ErrForbidden
	}
	return u.decisions.ListByInvestor(ctx, caller.ID)
}

func (u *decisionUsecase) findPitch(ctx context.Context, id uuid.UUID) (*pitchentity.PitchAnalysis, error) {
	p, err := u.pitches.FindByID(ctx, id)
	if errors.Is(err, pitchusecase.ErrPitchNotFound) {
		return nil, ErrPitchNotFound
	}
	return p, err
}

func normalizeInput(in entity.Input) (entity.Input, error) {
	if !in.Status.Valid() {
		return in, fmt.Errorf("%w: status must be pending, accepted or rejected", ErrInvalidDecision)
	}
	if in.GrantedAmount != nil && *in.GrantedAmount < 0 {
		return in, fmt.Errorf("%w: granted amount must not be negative", ErrInvalidDecision)
	}
	if in.Feedback != nil {
		fb := strings.TrimSpace(*in.Feedback)
		switch {
		case fb == "":
			in.Feedback = nil
		case len([]rune(fb)) > maxFeedbackRunes:
			return in, fmt.Errorf("%w: feedback must be at most %d characters", ErrInvalidDecision, maxFeedbackRunes)
		default:
			in.Feedback = &fb
		}
	}
	return in, nil
}
