package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"pitch_backend/internal/feature/analyzer/domain/entity"
	"pitch_backend/internal/shared/logutil"
)

const (
	// MaxPitchContentRunes はプロンプトに埋め込むピッチ本文の上限（文字数）です。
	MaxPitchContentRunes = 100_000
	// logOutputLimit は解析できなかった応答をログに残す最大文字数です。
	logOutputLimit = 500
)

// Completer は言語モデルにチャット形式の補完を1回送り、応答テキストを返します。
// 実装はレート制限をErrRateLimited、課金エラーをErrPaymentRequired、
// それ以外の失敗をErrUpstreamに変換します。
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// analyzerUsecase はCompleterを使ってピッチを採点します。
type analyzerUsecase struct {
	completer Completer
}

// NewAnalyzerUsecase はanalyzerUsecaseの新しいインスタンスを生成します。
func NewAnalyzerUsecase(completer Completer) *analyzerUsecase {
	return &analyzerUsecase{completer: completer}
}

// Analyze はプロンプトを組み立ててモデルに問い合わせ、応答を解析します。
// プロバイダのエラーはそのまま返し、解析できない応答の場合はFallbackResultを返します。
func (u *analyzerUsecase) Analyze(ctx context.Context, in entity.PitchInput) (*entity.ScoreResult, error) {
	in.PitchContent = strings.TrimSpace(in.PitchContent)
	in.StartupName = strings.TrimSpace(in.StartupName)
	in.Domain = strings.TrimSpace(in.Domain)
	if in.PitchContent == "" || in.StartupName == "" {
		return nil, ErrInvalidInput
	}
	if runes := []rune(in.PitchContent); len(runes) > MaxPitchContentRunes {
		in.PitchContent = string(runes[:MaxPitchContentRunes])
	}

	reply, err := u.completer.Complete(ctx, SystemPrompt, BuildUserPrompt(in))
	if err != nil {
		switch {
		case errors.Is(err, ErrRateLimited), errors.Is(err, ErrPaymentRequired), errors.Is(err, ErrUpstream):
			return nil, err
		default:
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}

	result, err := ParseScoreResult(reply)
	if err != nil {
		slog.Warn("falling back to default analysis",
			"startup", in.StartupName,
			"error", err,
			"output", logutil.Truncate(reply, logOutputLimit),
		)
		return FallbackResult(), nil
	}

	slog.Info("pitch analysis completed", "startup", in.StartupName, "overall_score", derefInt(result.OverallScore))
	return result, nil
}

func derefInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
