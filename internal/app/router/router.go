// Package router wires every HTTP handler onto a gin engine.
package router

import (
	"github.com/gin-gonic/gin"

	analyzerhandler "pitch_backend/internal/feature/analyzer/transport/handler"
	authhandler "pitch_backend/internal/feature/auth/transport/handler"
	decisionhandler "pitch_backend/internal/feature/decision/transport/handler"
	pitchhandler "pitch_backend/internal/feature/pitch/transport/handler"
	profileentity "pitch_backend/internal/feature/profile/domain/entity"
	profilehandler "pitch_backend/internal/feature/profile/transport/handler"
	startuphandler "pitch_backend/internal/feature/startup/transport/handler"
	platformhandler "pitch_backend/internal/platform/http/handler"
	jwtmw "pitch_backend/internal/platform/jwt"
	"pitch_backend/internal/shared/ratelimiter"
)

// Handlers groups the HTTP handlers of every feature.
type Handlers struct {
	Health   *platformhandler.HealthHandler
	Auth     *authhandler.AuthHandler
	Profile  *profilehandler.ProfileHandler
	Startup  *startuphandler.StartupHandler
	Pitch    *pitchhandler.PitchHandler
	Decision *decisionhandler.DecisionHandler
	Analyzer *analyzerhandler.AnalyzerHandler
}

// NewRouter builds the gin engine. limiter may be nil to disable rate limiting.
func NewRouter(h Handlers, jwtSecret string, limiter *ratelimiter.RateLimiter) *gin.Engine {
	r := gin.Default()

	founder := jwtmw.RequireRole(string(profileentity.RoleFounder))
	investor := jwtmw.RequireRole(string(profileentity.RoleInvestor))
	limited := limiter.Middleware()

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health.Live)
	r.HEAD("/healthz", h.Health.Live)
	r.GET("/readyz", h.Health.Ready)
	// 新規ユーザー登録
	r.POST("/signup", h.Auth.Signup)
	// ログイン（JWT 発行）
	r.POST("/login", h.Auth.Login)

	// 認証必須のルート
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(jwtSecret))
	{
		// 分析関数
		auth.POST("/functions/analyze-pitch", limited, h.Analyzer.AnalyzePitch)

		// プロフィール
		auth.GET("/me/profile", h.Profile.GetMe)
		auth.PUT("/me/profile", h.Profile.UpdateMe)

		// スタートアップディレクトリ
		auth.GET("/startups", h.Startup.List)
		auth.POST("/startups", founder, h.Startup.Create)
		auth.GET("/startups/:id", h.Startup.Get)
		auth.PUT("/startups/:id", founder, h.Startup.Update)
		auth.POST("/startups/:id/save", h.Startup.ToggleSave)
		auth.GET("/me/startup", founder, h.Startup.GetMine)
		auth.GET("/me/saved-startups", h.Startup.ListSaved)

		// ピッチ
		auth.POST("/startups/:id/pitches", founder, limited, h.Pitch.Upload)
		auth.GET("/startups/:id/pitches", h.Pitch.ListByStartup)
		auth.GET("/pitches", investor, h.Pitch.ListCompleted)
		auth.GET("/pitches/:id", h.Pitch.Get)
		auth.POST("/pitches/:id/retry", founder, limited, h.Pitch.Retry)

		// 投資判断
		auth.PUT("/pitches/:id/decision", investor, h.Decision.Decide)
		auth.GET("/pitches/:id/decisions", h.Decision.ListForPitch)
		auth.GET("/me/decisions", investor, h.Decision.ListMine)
	}

	return r
}
