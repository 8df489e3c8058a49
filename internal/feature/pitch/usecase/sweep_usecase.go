package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ExpiredReason はスイーパーが期限切れにした分析に記録する理由です。
const ExpiredReason = "analysis timed out"

// StaleRepository はスイーパーが必要とするPitchRepositoryの一部です。
type StaleRepository interface {
	ExpireStale(ctx context.Context, olderThan time.Time, reason string) (int64, error)
	CountStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// sweepUsecase はpendingまたはprocessingのまま止まった分析を期限切れにします。
type sweepUsecase struct {
	repo    StaleRepository
	timeout time.Duration
	now     func() time.Time
}

// NewSweepUsecase はsweepUsecaseの新しいインスタンスを生成します。
// 最終更新からtimeout以上経過した行を放置されたものとみなします。
func NewSweepUsecase(repo StaleRepository, timeout time.Duration) *sweepUsecase {
	return &sweepUsecase{repo: repo, timeout: timeout, now: time.Now}
}

// Sweep は放置された分析を1回期限切れにします。dryRunの場合は件数を数えるだけです。
func (u *sweepUsecase) Sweep(ctx context.Context, dryRun bool) (int64, error) {
	if u.timeout <= 0 {
		return 0, fmt.Errorf("sweep timeout must be positive, got %s", u.timeout)
	}
	cutoff := u.now().Add(-u.timeout)
	if dryRun {
		n, err := u.repo.CountStale(ctx, cutoff)
		if err != nil {
			return 0, fmt.Errorf("count stale analyses: %w", err)
		}
		return n, nil
	}
	n, err := u.repo.ExpireStale(ctx, cutoff, ExpiredReason)
	if err != nil {
		return 0, fmt.Errorf("expire stale analyses: %w", err)
	}
	if n > 0 {
		slog.Info("expired stale pitch analyses", "count", n, "cutoff", cutoff)
	}
	return n, nil
}

// Run はctxがキャンセルされるまでintervalごとにSweepを実行します。
func (u *sweepUsecase) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sweeper stopped")
			return
		case <-ticker.C:
			if _, err := u.Sweep(ctx, false); err != nil {
				slog.Error("sweep failed", "error", err)
			}
		}
	}
}
