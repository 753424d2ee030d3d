package resilience

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/kart-io/askwx/pkg/infra/middleware/internal/pathutil"
	mwopts "github.com/kart-io/askwx/pkg/options/middleware"
	"github.com/kart-io/askwx/pkg/utils/errors"
	"github.com/kart-io/askwx/pkg/utils/response"
)

// KeyFunc 从请求中提取限流键。
type KeyFunc func(c *gin.Context) string

// ClientIPKey 按客户端 IP 限流。
func ClientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

// Limiter 基于令牌桶的按键限流器。
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter 创建限流器：每个窗口最多 Limit 个请求，桶容量为 Burst (默认 Limit)。
func NewLimiter(opts mwopts.RateLimitOptions) *Limiter {
	burst := opts.Burst
	if burst == 0 {
		burst = opts.Limit
	}
	window := opts.GetWindow()
	return &Limiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(float64(opts.Limit) / window.Seconds()),
		burst:    burst,
		ttl:      3 * window,
		now:      time.Now,
	}
}

// Allow 判断 key 对应的请求是否放行。
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = e
		if len(l.limiters)%1024 == 0 {
			l.evictLocked(now)
		}
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (l *Limiter) evictLocked(now time.Time) {
	for k, e := range l.limiters {
		if now.Sub(e.lastSeen) > l.ttl {
			delete(l.limiters, k)
		}
	}
}

// RateLimitWithOptions 按客户端 IP 限流，超限返回 ErrTooManyRequests。
func RateLimitWithOptions(opts mwopts.RateLimitOptions) gin.HandlerFunc {
	return RateLimitWithLimiter(NewLimiter(opts), ClientIPKey, opts.SkipPaths)
}

// RateLimitWithLimiter 使用指定的限流器与键函数。
func RateLimitWithLimiter(l *Limiter, key KeyFunc, skipPaths []string) gin.HandlerFunc {
	skip := pathutil.NewPathMatcher(skipPaths, nil)
	return func(c *gin.Context) {
		if skip(c.Request.URL.Path) {
			c.Next()
			return
		}
		if !l.Allow(key(c)) {
			response.Fail(c, errors.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
