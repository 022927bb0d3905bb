package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/connectfood/core/internal/infrastructure/config"
	"github.com/connectfood/core/internal/pkg/httputil"
)

// RateLimiter is a sliding-window limiter stored in Redis sorted sets. It
// fails open: when Redis is unreachable requests are let through.
type RateLimiter struct {
	client     *redis.Client
	limit      int
	windowSize time.Duration
	logger     *zap.Logger
}

func NewRateLimiter(client *redis.Client, cfg config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client:     client,
		limit:      cfg.RequestsPerMin,
		windowSize: time.Minute,
		logger:     logger,
	}
}

// Limit must run after Authenticate so authenticated callers are bucketed
// by username instead of address.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := rl.allow(c.Request.Context(), rateLimitKey(c))
		if err != nil {
			rl.logger.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.remaining))

		if !decision.allowed {
			c.Header("Retry-After", strconv.Itoa(int(decision.retryAfter.Seconds())+1))
			httputil.ErrorWithCode(c, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}

func rateLimitKey(c *gin.Context) string {
	if principal, ok := httputil.GetPrincipal(c); ok {
		return "ratelimit:user:" + principal.Username
	}
	return "ratelimit:ip:" + c.ClientIP()
}

type decision struct {
	allowed    bool
	remaining  int
	retryAfter time.Duration
}

func (rl *RateLimiter) allow(ctx context.Context, key string) (decision, error) {
	now := time.Now()
	windowStart := now.Add(-rl.windowSize).UnixMicro()

	pipe := rl.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("(%d", windowStart))
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMicro()),
		Member: uuid.NewString(),
	})
	countCmd := pipe.ZCard(ctx, key)
	oldestCmd := pipe.ZRangeWithScores(ctx, key, 0, 0)
	pipe.Expire(ctx, key, rl.windowSize)

	if _, err := pipe.Exec(ctx); err != nil {
		return decision{}, fmt.Errorf("rate limit pipeline: %w", err)
	}

	count := int(countCmd.Val())
	d := decision{
		allowed:   count <= rl.limit,
		remaining: max(rl.limit-count, 0),
	}

	if !d.allowed {
		if oldest := oldestCmd.Val(); len(oldest) > 0 {
			expiresAt := time.UnixMicro(int64(oldest[0].Score)).Add(rl.windowSize)
			d.retryAfter = max(time.Until(expiresAt), 0)
		}
	}

	return d, nil
}
