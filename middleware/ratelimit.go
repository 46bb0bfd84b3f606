package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/go-chi/render"
	"github.com/redis/go-redis/v9"
)

// slidingWindow admits a request when fewer than limit entries fall inside the
// window, recording it atomically.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window_start = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
local count = redis.call('ZCARD', key)
if count < limit then
	redis.call('ZADD', key, now, now .. '-' .. math.random())
	redis.call('PEXPIRE', key, ttl)
	return 1
end
return 0
`)

// RedisRateLimiter is a sliding window limiter shared by every gateway
// replica.
type RedisRateLimiter struct {
	rdb    redis.Scripter
	prefix string
}

func NewRedisRateLimiter(rdb redis.Scripter) *RedisRateLimiter {
	return &RedisRateLimiter{
		rdb:    rdb,
		prefix: "hxadmin:rl:",
	}
}

type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	KeyFn  func(r *http.Request) string
}

// Middleware enforces cfg. Redis failures let the request through.
func (l *RedisRateLimiter) Middleware(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.KeyFn == nil {
		cfg.KeyFn = KeyByIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.rdb == nil {
				next.ServeHTTP(w, r)
				return
			}

			allowed, err := l.allow(r.Context(), l.prefix+cfg.KeyFn(r), cfg.Limit, cfg.Window)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				writeTooManyRequests(w, r, cfg.Window)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (l *RedisRateLimiter) allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now().UnixMilli()
	res, err := slidingWindow.Run(ctx, l.rdb, []string{key},
		now, now-window.Milliseconds(), limit, window.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

// RateLimit limits requests per browser session, falling back to the client
// address. With a Redis scripter the window is shared across replicas; without
// one each process counts on its own. A non-positive limit disables limiting.
func RateLimit(rdb redis.Scripter, limit int, window time.Duration) func(http.Handler) http.Handler {
	if limit <= 0 || window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if rdb != nil {
		return NewRedisRateLimiter(rdb).Middleware(RateLimitConfig{
			Limit:  limit,
			Window: window,
			KeyFn:  KeyBySession,
		})
	}
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) { return KeyBySession(r), nil }),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeTooManyRequests(w, r, window)
		}),
	)
}

// KeyByIP keys on the first X-Forwarded-For hop, else the peer address.
func KeyByIP(r *http.Request) string {
	return "ip:" + clientIP(r)
}

// clientIP is the first X-Forwarded-For hop, else the peer address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// KeyBySession keys on the bound session id, else the client address.
func KeyBySession(r *http.Request) string {
	if sid := GetSessionID(r.Context()); sid != "" {
		return "session:" + sid
	}
	return KeyByIP(r)
}

func writeTooManyRequests(w http.ResponseWriter, r *http.Request, window time.Duration) {
	w.Header().Set("Retry-After", strconv.Itoa(int(window.Round(time.Second).Seconds())))
	render.Status(r, http.StatusTooManyRequests)
	render.JSON(w, r, map[string]any{
		"error": map[string]string{
			"code":       "rate_limited",
			"message":    "too many requests, try again later",
			"request_id": GetRequestID(r.Context()),
		},
	})
}
