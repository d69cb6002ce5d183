package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AnshRaj112/soullog/pkg/clientip"
)

const (
	// RateLimitWindow is 120 seconds
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests is the maximum number of requests allowed in the window
	RateLimitMaxRequests = 120
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
	// BlockedIPKeyPrefix is the Redis key prefix for blocked IPs
	BlockedIPKeyPrefix = "blocked_ip:"
	// BlockedIPDuration is how long an IP stays blocked
	BlockedIPDuration = 15 * time.Minute

	redisLimitTimeout = time.Second
)

// RedisRateLimit counts requests per IP in fixed Redis windows, shared by every
// instance. An IP over the limit is blocked for BlockedIPDuration. Redis errors
// let the request through.
type RedisRateLimit struct {
	client *redis.Client
	log    *zap.SugaredLogger
	max    int64
	window time.Duration
}

func NewRedisRateLimit(client *redis.Client, log *zap.SugaredLogger) *RedisRateLimit {
	return &RedisRateLimit{
		client: client,
		log:    log,
		max:    RateLimitMaxRequests,
		window: RateLimitWindow,
	}
}

func (l *RedisRateLimit) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientip.RealClientIP(r)
		ctx, cancel := context.WithTimeout(r.Context(), redisLimitTimeout)
		defer cancel()

		blocked, err := l.IsBlocked(ctx, ip)
		if err == nil && blocked {
			http.Error(w, "Too many requests. Please try again later.", http.StatusTooManyRequests)
			return
		}

		count, err := l.hit(ctx, ip)
		if err != nil {
			l.log.Warnw("rate limit unavailable", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		if count > l.max {
			if err := l.client.Set(ctx, BlockedIPKeyPrefix+ip, "1", BlockedIPDuration).Err(); err != nil {
				l.log.Warnw("failed to block ip", "ip", ip, "error", err)
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(BlockedIPDuration.Seconds())))
			http.Error(w, "Too many requests. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(l.max, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(l.max-count, 10))
		next.ServeHTTP(w, r)
	})
}

// hit increments the window counter. The first request of a window creates the
// counter with its expiry; INCR keeps that TTL.
func (l *RedisRateLimit) hit(ctx context.Context, ip string) (int64, error) {
	key := RateLimitKeyPrefix + ip
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, l.window)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// IsBlocked checks if an IP is currently blocked.
func (l *RedisRateLimit) IsBlocked(ctx context.Context, ip string) (bool, error) {
	n, err := l.client.Exists(ctx, BlockedIPKeyPrefix+ip).Result()
	return n > 0, err
}
