// Package ratelimiter はRedisの固定ウィンドウによるリクエスト頻度制限を提供します。
package ratelimiter

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	jwtmw "pitch_backend/internal/platform/jwt"
)

// RateLimiter は、ユーザーごとの操作の頻度をウィンドウ単位で制限します。
type RateLimiter struct {
	rdb    redis.Cmdable
	limit  int           // ウィンドウあたりの上限
	window time.Duration // どの単位でリセットするか
	prefix string
	now    func() time.Time
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
// limit が0以下の場合は制限しません。
func NewRateLimiter(rdb redis.Cmdable, limit int, window time.Duration, prefix string) *RateLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RateLimiter{rdb: rdb, limit: limit, window: window, prefix: prefix, now: time.Now}
}

// Allow はkeyの今回の呼び出しが上限内かを返します。
// 上限超過時は次のウィンドウまでの待ち時間も返します。
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := rl.now()
	slot := now.UnixNano() / int64(rl.window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.prefix, key, slot)

	var incr *redis.IntCmd
	_, err := rl.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, rl.window)
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	if incr.Val() <= int64(rl.limit) {
		return true, 0, nil
	}
	windowEnd := time.Unix(0, (slot+1)*int64(rl.window))
	return false, windowEnd.Sub(now), nil
}

// Middleware はユーザーID(未認証ならクライアントIP)ごとに制限するGinミドルウェアを返します。
// Redisが使えない場合は制限せずに通します。
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.rdb == nil || rl.limit <= 0 {
			c.Next()
			return
		}
		key := c.ClientIP()
		if userID, ok := jwtmw.UserIDFrom(c); ok {
			key = userID.String()
		}

		allowed, retryAfter, err := rl.Allow(c.Request.Context(), key)
		if err != nil {
			slog.Warn("rate limiter unavailable, allowing request", "error", err)
			c.Next()
			return
		}
		if !allowed {
			slog.Info("[RATE LIMIT] request rejected", "key", key, "limit", rl.limit, "retry_after", retryAfter)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Please try again later."})
			return
		}
		c.Next()
	}
}
