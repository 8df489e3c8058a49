package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	startupadapters "pitch_backend/internal/feature/startup/adapters"
	"pitch_backend/internal/feature/startup/usecase"
	"pitch_backend/internal/platform/cache"
)

// directoryCacheTTL bounds how stale a cached directory search may be.
const directoryCacheTTL = 5 * time.Minute

// NewStartupRepository creates a StartupRepository implementation.
// If Redis is available, directory searches are cached in Redis.
// Otherwise, every search goes to the database.
func NewStartupRepository(rdb *redis.Client, db *gorm.DB) usecase.StartupRepository {
	repo := startupadapters.NewStartupRepository(db)
	if rdb != nil {
		return cache.NewCachingStartupRepository(rdb, directoryCacheTTL, repo, "startups")
	}
	return repo
}
