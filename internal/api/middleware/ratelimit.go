package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	Limit   redis_rate.Limit
	KeyFunc func(c echo.Context) string
}

// PerMinute builds a limit of n requests per minute with burst n.
func PerMinute(n int) redis_rate.Limit {
	return redis_rate.Limit{Rate: n, Burst: n, Period: time.Minute}
}

// KeyByIP keys the limit by the client address echo resolved.
func KeyByIP(c echo.Context) string {
	return "ratelimit:ip:" + c.RealIP()
}

// RateLimit throttles requests with a Redis GCRA limiter. When Redis is
// unreachable it falls back to an in-process token bucket per key.
func RateLimit(rdb *redis.Client, cfg RateLimitConfig, log zerolog.Logger) echo.MiddlewareFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}
	limiter := redis_rate.NewLimiter(rdb)
	fallback := &localLimiter{}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Limit.Rate <= 0 {
				return next(c)
			}

			key := cfg.KeyFunc(c)
			res, err := limiter.Allow(c.Request().Context(), key, cfg.Limit)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, using local limiter")
				res = fallback.allow(key, cfg.Limit)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit.Rate))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

			if res.Allowed == 0 {
				retryAfter := int(res.RetryAfter.Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				h.Set("Retry-After", strconv.Itoa(retryAfter))
				return echo.NewHTTPError(http.StatusTooManyRequests,
					fmt.Sprintf("rate limit exceeded, retry after %d seconds", retryAfter))
			}

			return next(c)
		}
	}
}

type localLimiter struct {
	limiters sync.Map
}

func (l *localLimiter) allow(key string, limit redis_rate.Limit) *redis_rate.Result {
	perSec := float64(limit.Rate) / limit.Period.Seconds()

	v, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(rate.Limit(perSec), limit.Burst))
	lim := v.(*rate.Limiter)

	res := &redis_rate.Result{Limit: limit, RetryAfter: -1}
	if lim.Allow() {
		res.Allowed = 1
	} else {
		res.RetryAfter = time.Duration(float64(time.Second) / perSec)
	}
	if remaining := int(lim.Tokens()); remaining > 0 {
		res.Remaining = remaining
	}
	return res
}
