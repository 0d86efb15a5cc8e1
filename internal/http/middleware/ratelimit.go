package middleware

import (
	"net/http"
	"strconv"
	"time"

	echo "github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// RateLimitResult is the limiter's decision for one request, consumed by
// AttachRateLimitHeaders and by the out-of-process callers reading the
// X-RateLimit-* headers.
type RateLimitResult struct {
	Allowed   bool
	Remaining int
}

// RateLimitConfig configures the Redis-backed fixed-window per-IP limiter.
type RateLimitConfig struct {
	Redis          *redis.Client
	Max            int           // requests per window; <=0 disables
	Window         time.Duration // usually 1m
	KeyPrefix      string        // e.g. "rl:ip:"
	Environment    string        // rendered into X-RateLimit-Environment
	RetryAfterHint bool          // set Retry-After header when limited
}

// RateLimitMiddleware applies a fixed-window request budget per client IP.
// The endpoint is public (no API keys on a landing page), so the remote
// address is the only identity available. Redis being down or absent means
// fail-open: a broken limiter must not take payments down with it.
func RateLimitMiddleware(cfg RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "rl:ip:"
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Max <= 0 || cfg.Redis == nil {
				return next(c)
			}

			now := time.Now()
			// fixed-window key: rl:ip:{addr}:{window_index}
			window := now.Unix() / int64(cfg.Window/time.Second)
			key := cfg.KeyPrefix + c.RealIP() + ":" + strconv.FormatInt(window, 10)

			pipe := cfg.Redis.Pipeline()
			cnt := pipe.Incr(c.Request().Context(), key)
			pipe.Expire(c.Request().Context(), key, cfg.Window*2)
			if _, err := pipe.Exec(c.Request().Context()); err != nil {
				return next(c)
			}

			n := int(cnt.Val())
			remaining := cfg.Max - n
			if remaining < 0 {
				remaining = 0
			}
			result := RateLimitResult{Allowed: n <= cfg.Max, Remaining: remaining}

			headers := AttachRateLimitHeaders(map[string]string{}, result, RateLimitHeaderConfig{
				Window:      cfg.Window,
				Environment: cfg.Environment,
			})
			for k, v := range headers {
				c.Response().Header().Set(k, v)
			}

			if !result.Allowed {
				if cfg.RetryAfterHint {
					remain := cfg.Window - time.Duration(now.UnixNano()%int64(cfg.Window))
					if remain > 0 {
						c.Response().Header().Set("Retry-After", strconv.Itoa(int(remain.Round(time.Second)/time.Second)))
					}
				}
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limited"})
			}
			return next(c)
		}
	}
}
