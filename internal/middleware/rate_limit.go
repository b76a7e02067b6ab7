package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window request counter kept in Redis.
type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisURL string) (*RateLimiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RateLimiter{redis: client}, nil
}

// NewRateLimiterWithClient wraps an existing client.
func NewRateLimiterWithClient(client *redis.Client) *RateLimiter {
	return &RateLimiter{redis: client}
}

// RateLimitByIP allows maxRequests per window for each client IP and route.
func (rl *RateLimiter) RateLimitByIP(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:ip:%s:%s", c.FullPath(), c.ClientIP())
		rl.limit(c, key, maxRequests, window)
	}
}

// RateLimitByUser keys on the authenticated user and must run after
// AuthRequired. Requests without a user fall back to the client IP.
func (rl *RateLimiter) RateLimitByUser(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetString("user_id")
		if subject == "" {
			subject = c.ClientIP()
		}
		key := fmt.Sprintf("rate_limit:user:%s:%s", c.FullPath(), subject)
		rl.limit(c, key, maxRequests, window)
	}
}

func (rl *RateLimiter) limit(c *gin.Context, key string, maxRequests int, window time.Duration) {
	ctx := c.Request.Context()

	count, err := rl.redis.Incr(ctx, key).Result()
	if err != nil {
		// Fail open when Redis is unavailable.
		_ = c.Error(fmt.Errorf("rate limiter error: %w", err))
		c.Next()
		return
	}

	if count == 1 {
		rl.redis.Expire(ctx, key, window)
	}

	if count > int64(maxRequests) {
		ttl, _ := rl.redis.TTL(ctx, key).Result()

		c.Header("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RATE_LIMIT_EXCEEDED",
				"message": "Too many requests. Please try again later.",
			},
		})
		c.Abort()
		return
	}

	c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", maxRequests))
	c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", maxRequests-int(count)))
	c.Next()
}

func (rl *RateLimiter) Close() error {
	return rl.redis.Close()
}
