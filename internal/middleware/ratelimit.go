package middleware

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/salon-booking-api/pkg/errors"
	"github.com/noah-isme/salon-booking-api/pkg/response"
)

// RateLimitObserver counts rejected requests.
type RateLimitObserver interface {
	ObserveRateLimited(scope string)
}

// RateLimiter is a Redis fixed-window limiter shared by every API instance.
type RateLimiter struct {
	rdb      redis.Scripter
	limit    int
	window   time.Duration
	prefix   string
	failOpen bool
	metrics  RateLimitObserver
	logger   *zap.Logger
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// NewRateLimiter builds a limiter allowing limit requests per window and client.
func NewRateLimiter(rdb redis.Scripter, limit int, window time.Duration, failOpen bool, metrics RateLimitObserver, logger *zap.Logger) *RateLimiter {
	if limit <= 0 {
		limit = 20
	}
	if window <= 0 {
		window = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		rdb:      rdb,
		limit:    limit,
		window:   window,
		prefix:   "salon:rl",
		failOpen: failOpen,
		metrics:  metrics,
		logger:   logger,
	}
}

// Limit returns middleware counting requests under scope per client IP.
func (rl *RateLimiter) Limit(scope string) gin.HandlerFunc {
	scope = strings.TrimSpace(scope)
	return func(c *gin.Context) {
		key := rl.prefix + ":" + scope + ":" + c.ClientIP()
		count, err := rl.incr(c.Request.Context(), key)
		if err != nil {
			rl.logger.Warn("rate limiter unavailable", zap.String("scope", scope), zap.Error(err))
			if rl.failOpen {
				c.Next()
				return
			}
			response.Error(c, appErrors.Clone(appErrors.ErrUnavailable, "rate limiter unavailable"))
			c.Abort()
			return
		}
		if count > int64(rl.limit) {
			if rl.metrics != nil {
				rl.metrics.ObserveRateLimited(scope)
			}
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			response.Error(c, appErrors.ErrTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) incr(ctx context.Context, key string) (int64, error) {
	res, err := fixedWindowScript.Run(ctx, rl.rdb, []string{key}, rl.window.Milliseconds()).Result()
	if err != nil {
		return 0, err
	}
	switch v := res.(type) {
	case int64:
		return v, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected rate limit result %T", res)
	}
}
