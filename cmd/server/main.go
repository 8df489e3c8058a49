package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"pitch_backend/internal/app/di"
	"pitch_backend/internal/app/router"
	analyzerhandler "pitch_backend/internal/feature/analyzer/transport/handler"
	analyzerusecase "pitch_backend/internal/feature/analyzer/usecase"
	authadapters "pitch_backend/internal/feature/auth/adapters"
	authhandler "pitch_backend/internal/feature/auth/transport/handler"
	authusecase "pitch_backend/internal/feature/auth/usecase"
	decisionadapters "pitch_backend/internal/feature/decision/adapters"
	decisionhandler "pitch_backend/internal/feature/decision/transport/handler"
	decisionusecase "pitch_backend/internal/feature/decision/usecase"
	pitchadapters "pitch_backend/internal/feature/pitch/adapters"
	pitchhandler "pitch_backend/internal/feature/pitch/transport/handler"
	pitchusecase "pitch_backend/internal/feature/pitch/usecase"
	profileadapters "pitch_backend/internal/feature/profile/adapters"
	profilehandler "pitch_backend/internal/feature/profile/transport/handler"
	profileusecase "pitch_backend/internal/feature/profile/usecase"
	startupadapters "pitch_backend/internal/feature/startup/adapters"
	startuphandler "pitch_backend/internal/feature/startup/transport/handler"
	startupusecase "pitch_backend/internal/feature/startup/usecase"
	"pitch_backend/internal/platform/config"
	infradb "pitch_backend/internal/platform/db"
	platformhandler "pitch_backend/internal/platform/http/handler"
	jwtmw "pitch_backend/internal/platform/jwt"
	infraredis "pitch_backend/internal/platform/redis"
	"pitch_backend/internal/shared/ratelimiter"
)

const shutdownTimeout = 15 * time.Second

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := infradb.OpenDB(cfg.DB)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if cfg.DB.Migrate {
		if err := di.Migrate(db); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
		slog.Info("database migrated")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}
	defer sqlDB.Close()

	// Redis (任意)
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(cfg.Redis); err != nil {
		slog.Warn("Redis unavailable. Running without cache and rate limiting.", "error", err)
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// 外部サービス
	completer, err := di.NewCompleter(ctx, cfg.LLM)
	if err != nil {
		log.Fatalf("failed to create LLM client: %v", err)
	}
	store, closeStore, err := di.NewObjectStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("failed to create object store: %v", err)
	}
	defer closeStore()
	extractor, closeExtractor, err := di.NewTextExtractor(ctx, cfg.VisionEnabled)
	if err != nil {
		log.Fatalf("failed to create text extractor: %v", err)
	}
	defer closeExtractor()

	// Repository
	userRepo := authadapters.NewUserRepository(db)
	profileRepo := profileadapters.NewProfileRepository(db)
	startupRepo := di.NewStartupRepository(rdb, db)
	savedRepo := startupadapters.NewSavedStartupRepository(db)
	pitchRepo := pitchadapters.NewPitchRepository(db)
	decisionRepo := decisionadapters.NewDecisionRepository(db)

	// Usecase
	jwtGen := jwtmw.NewGenerator(cfg.JWT.Secret, cfg.JWT.Expiration)
	authUC := authusecase.NewAuthUsecase(userRepo, jwtGen)
	profileUC := profileusecase.NewProfileUsecase(profileRepo)
	startupUC := startupusecase.NewStartupUsecase(startupRepo, savedRepo)
	analyzerUC := analyzerusecase.NewAnalyzerUsecase(completer)
	pitchUC := pitchusecase.NewPitchUsecase(pitchRepo, startupRepo, store, extractor, analyzerUC, cfg.AnalysisTimeout)
	decisionUC := decisionusecase.NewDecisionUsecase(decisionRepo, pitchRepo, startupRepo)
	sweepUC := pitchusecase.NewSweepUsecase(pitchRepo, cfg.Sweep.Timeout)

	// Handler
	checks := map[string]platformhandler.Checker{
		"database": platformhandler.CheckFunc(sqlDB.PingContext),
	}
	if rdb != nil {
		checks["redis"] = platformhandler.CheckFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	handlers := router.Handlers{
		Health:   platformhandler.NewHealthHandler(checks),
		Auth:     authhandler.NewAuthHandler(authUC),
		Profile:  profilehandler.NewProfileHandler(profileUC),
		Startup:  startuphandler.NewStartupHandler(startupUC),
		Pitch:    pitchhandler.NewPitchHandler(pitchUC),
		Decision: decisionhandler.NewDecisionHandler(decisionUC),
		Analyzer: analyzerhandler.NewAnalyzerHandler(analyzerUC),
	}

	var limiter *ratelimiter.RateLimiter
	if rdb != nil && cfg.RateLimitPerMinute > 0 {
		limiter = ratelimiter.NewRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute, "ratelimit")
	}

	// ルータ生成
	engine := router.NewRouter(handlers, cfg.JWT.Secret, limiter)

	// 放置された解析を定期的に期限切れにする
	if cfg.Sweep.Interval > 0 {
		go sweepUC.Run(ctx, cfg.Sweep.Interval)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
