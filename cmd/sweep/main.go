// Command sweep expires pitch analyses stuck in pending or processing.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	pitchadapters "pitch_backend/internal/feature/pitch/adapters"
	pitchusecase "pitch_backend/internal/feature/pitch/usecase"
	"pitch_backend/internal/platform/config"
	infradb "pitch_backend/internal/platform/db"
)

// runTimeout bounds one sweep against the database.
const runTimeout = 5 * time.Minute

// sweepFunc expires (or with dryRun counts) analyses idle for longer than timeout.
type sweepFunc func(ctx context.Context, timeout time.Duration, dryRun bool) (int64, error)

func newRootCmd(sweep sweepFunc) *cobra.Command {
	var (
		timeout time.Duration
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:          "sweep",
		Short:        "Expire pitch analyses abandoned in pending or processing",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if timeout <= 0 {
				return fmt.Errorf("--timeout must be positive, got %s", timeout)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
			defer cancel()

			n, err := sweep(ctx, timeout, dryRun)
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%d stale analyses would be expired\n", n)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%d stale analyses expired\n", n)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Minute, "age after which a pending or processing analysis is abandoned")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only count stale analyses")
	return cmd
}

func sweepDatabase(ctx context.Context, timeout time.Duration, dryRun bool) (int64, error) {
	cfg, err := config.Load()
	if err != nil {
		return 0, fmt.Errorf("load config: %w", err)
	}
	db, err := infradb.OpenDB(cfg.DB)
	if err != nil {
		return 0, fmt.Errorf("connect database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	uc := pitchusecase.NewSweepUsecase(pitchadapters.NewPitchRepository(db), timeout)
	return uc.Sweep(ctx, dryRun)
}

func main() {
	if err := newRootCmd(sweepDatabase).ExecuteContext(context.Background()); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
