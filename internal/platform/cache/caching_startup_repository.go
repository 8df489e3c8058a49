// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"pitch_backend/internal/feature/startup/domain/entity"
	"pitch_backend/internal/feature/startup/usecase"
)

// CachingStartupRepository decorates a StartupRepository with Redis caching
// of directory searches. Writes invalidate every cached search.
type CachingStartupRepository struct {
	inner     usecase.StartupRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.StartupRepository = (*CachingStartupRepository)(nil)

// NewCachingStartupRepository decorates a StartupRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "startups".
func NewCachingStartupRepository(rdb *redis.Client, ttl time.Duration, inner usecase.StartupRepository, namespace string) *CachingStartupRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "startups"
	}
	return &CachingStartupRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create stores the startup and invalidates cached searches.
func (c *CachingStartupRepository) Create(ctx context.Context, s *entity.Startup) error {
	if err := c.inner.Create(ctx, s); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// Update stores the startup and invalidates cached searches.
func (c *CachingStartupRepository) Update(ctx context.Context, s *entity.Startup) error {
	if err := c.inner.Update(ctx, s); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CachingStartupRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Startup, error) {
	return c.inner.FindByID(ctx, id)
}

func (c *CachingStartupRepository) FindByOwner(ctx context.Context, userID uuid.UUID) (*entity.Startup, error) {
	return c.inner.FindByOwner(ctx, userID)
}

// Search checks the cache first, then falls back to the inner repository.
func (c *CachingStartupRepository) Search(ctx context.Context, f entity.Filter) ([]entity.Startup, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.Search(ctx, f)
	}

	key := c.searchKey(f)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Startup
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.Search(ctx, f)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

func (c *CachingStartupRepository) invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	if err := c.deleteByPattern(ctx, c.searchPrefix()+"*"); err != nil {
		slog.Warn("failed to invalidate startup search cache", "error", err)
	}
}

func (c *CachingStartupRepository) searchPrefix() string {
	return c.namespace + ":search:"
}

// searchKey generates a cache key for a specific filter.
// Searches are case-insensitive, so fields are lowercased before hashing.
// The hash keeps distinct filters on distinct keys and free of SCAN metacharacters.
func (c *CachingStartupRepository) searchKey(f entity.Filter) string {
	norm, _ := json.Marshal([3]string{
		strings.ToLower(f.Query),
		strings.ToLower(f.Domain),
		strings.ToLower(f.Stage),
	})
	sum := sha256.Sum256(norm)
	return c.searchPrefix() + hex.EncodeToString(sum[:])
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingStartupRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}
