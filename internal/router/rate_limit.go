package router

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/picklemart/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitedFunc 超限后的响应处理
type RateLimitedFunc func(c *gin.Context, waitSeconds int)

// RateLimitRule 限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	OnLimited     RateLimitedFunc
}

func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

func (r RateLimitRule) window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// Limiter 判断一次请求是否放行，拒绝时返回需等待的秒数
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, waitSeconds int, err error)
}

// NewLimiter 有 Redis 时使用共享固定窗口，否则退化为进程内令牌桶
func NewLimiter(client redis.Scripter, rule RateLimitRule) Limiter {
	local := newLocalLimiter(rule)
	if client == nil {
		return local
	}
	return &redisLimiter{client: client, rule: rule, fallback: local}
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// redisLimiter 多实例共享的固定窗口计数
type redisLimiter struct {
	client   redis.Scripter
	rule     RateLimitRule
	fallback *localLimiter
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	result, err := fixedWindowScript.Run(ctx, l.client, []string{key}, l.rule.WindowSeconds).Slice()
	if err != nil || len(result) < 2 {
		logger.Warnw("rate_limit_redis_degraded", "key", key, "error", err)
		return l.fallback.Allow(ctx, key)
	}
	count, ok := toInt64(result[0])
	if !ok {
		return l.fallback.Allow(ctx, key)
	}
	if count <= int64(l.rule.MaxRequests) {
		return true, 0, nil
	}
	ttl, _ := toInt64(result[1])
	if ttl < 1 {
		ttl = int64(l.rule.WindowSeconds)
	}
	return false, int(ttl), nil
}

const localLimiterSweepSize = 4096

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localLimiter 单进程令牌桶，容量为窗口内的最大次数
type localLimiter struct {
	mu      sync.Mutex
	entries map[string]*localEntry
	every   rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
}

func newLocalLimiter(rule RateLimitRule) *localLimiter {
	l := &localLimiter{
		entries: make(map[string]*localEntry),
		burst:   rule.MaxRequests,
		idle:    rule.window(),
		now:     time.Now,
	}
	if rule.enabled() {
		l.every = rate.Every(rule.window() / time.Duration(rule.MaxRequests))
	}
	return l
}

func (l *localLimiter) Allow(_ context.Context, key string) (bool, int, error) {
	now := l.now()
	l.mu.Lock()
	entry, ok := l.entries[key]
	if !ok {
		if len(l.entries) >= localLimiterSweepSize {
			l.sweep(now)
		}
		entry = &localEntry{limiter: rate.NewLimiter(l.every, l.burst)}
		l.entries[key] = entry
	}
	entry.lastSeen = now
	reservation := entry.limiter.ReserveN(now, 1)
	l.mu.Unlock()

	if !reservation.OK() {
		return false, int(l.idle.Seconds()), nil
	}
	delay := reservation.DelayFrom(now)
	if delay <= 0 {
		return true, 0, nil
	}
	reservation.CancelAt(now)
	return false, int(math.Ceil(delay.Seconds())), nil
}

// sweep 清理窗口期内未再出现的 key
func (l *localLimiter) sweep(now time.Time) {
	for key, entry := range l.entries {
		if now.Sub(entry.lastSeen) > l.idle {
			delete(l.entries, key)
		}
	}
}

// RateLimitMiddleware 频率限制中间件
func RateLimitMiddleware(limiter Limiter, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || !rule.enabled() {
			c.Next()
			return
		}

		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = rule.Prefix + ":" + key
		}

		allowed, waitSeconds, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Errorw("rate_limit_unavailable", "key", key, "error", err)
			c.String(http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.")
			c.Abort()
			return
		}
		if allowed {
			c.Next()
			return
		}

		if waitSeconds < 1 {
			waitSeconds = 1
		}
		logger.Warnw("rate_limited", "key", key, "wait_seconds", waitSeconds)
		if rule.OnLimited != nil {
			rule.OnLimited(c, waitSeconds)
		} else {
			c.String(http.StatusTooManyRequests, fmt.Sprintf("Too many requests. Please try again in %d seconds.", waitSeconds))
		}
		c.Abort()
	}
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndFormField 使用 IP + 表单字段作为限流 key
func KeyByIPAndFormField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(strings.TrimSpace(c.PostForm(field)))
		if value == "" {
			return c.ClientIP()
		}
		return value + "|" + c.ClientIP()
	}
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
