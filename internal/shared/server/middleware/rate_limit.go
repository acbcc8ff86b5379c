package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/AjayKumar0077/Resumelit/internal/shared/server/respond"
)

const (
	// RateGroupDefault covers record CRUD and everything else.
	RateGroupDefault = "DEFAULT"
	// RateGroupAI covers routes that call the AI provider.
	RateGroupAI = "AI"

	// DefaultLimiterIdleTTL is how long an unused limiter is kept.
	DefaultLimiterIdleTTL = 10 * time.Minute
)

// RateLimitRule is a token bucket refilled at Rate tokens per second up to Burst.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

type RateLimitConfig struct {
	Rules        map[string]RateLimitRule
	DefaultGroup string
	GroupFor     func(*gin.Context) string
	Limiter      *RateLimiter
}

// RateLimiter keeps one rate.Limiter per key and drops limiters that have
// been idle for longer than the idle TTL.
type RateLimiter struct {
	mu        sync.Mutex
	entries   map[string]*limiterEntry
	now       func() time.Time
	idleTTL   time.Duration
	lastSweep time.Time
}

type limiterEntry struct {
	lim  *rate.Limiter
	rule RateLimitRule
	seen time.Time
}

// NewRateLimiter builds a limiter set. A zero idleTTL uses DefaultLimiterIdleTTL.
func NewRateLimiter(now func() time.Time, idleTTL time.Duration) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	if idleTTL <= 0 {
		idleTTL = DefaultLimiterIdleTTL
	}
	return &RateLimiter{
		entries:   make(map[string]*limiterEntry),
		now:       now,
		idleTTL:   idleTTL,
		lastSweep: now(),
	}
}

// AIRouteGroup puts assistant and upload routes in RateGroupAI.
func AIRouteGroup(c *gin.Context) string {
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	if strings.HasPrefix(path, "/api/v1/assistant/") || strings.HasPrefix(path, "/api/v1/uploads") {
		if c.Request.Method == http.MethodPost {
			return RateGroupAI
		}
	}
	return RateGroupDefault
}

// RateLimit rejects callers that exhaust their bucket with 429 and Retry-After.
// Signed-in users are limited per user id; guests pick their own id, so they
// are limited per client IP.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil, 0)
	}
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = RateGroupDefault
	}
	return func(c *gin.Context) {
		group := cfg.DefaultGroup
		if cfg.GroupFor != nil {
			if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
				group = g
			}
		}
		rule, ok := cfg.Rules[group]
		if !ok {
			c.Next()
			return
		}
		allowed, retryAfter := cfg.Limiter.Allow(group+"|"+rateKey(c), rule)
		if allowed {
			c.Next()
			return
		}

		retryAfterMs := int(math.Ceil(float64(retryAfter) / float64(time.Millisecond)))
		if retryAfterMs <= 0 {
			retryAfterMs = 1000
		}
		retryAfterSeconds := int(math.Ceil(float64(retryAfterMs) / 1000.0))
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "too many requests", gin.H{
			"group":        group,
			"retryAfterMs": retryAfterMs,
		})
	}
}

func rateKey(c *gin.Context) string {
	if uid := strings.TrimSpace(UserIDFromContext(c)); uid != "" && !IsGuest(c) {
		return "user:" + uid
	}
	return "ip:" + strings.TrimSpace(c.ClientIP())
}

// Allow takes one token for key and reports how long to wait when none is left.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}
	if rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(now)

	entry, ok := l.entries[key]
	if !ok || entry.rule != rule {
		entry = &limiterEntry{lim: rate.NewLimiter(rate.Limit(rule.Rate), rule.Burst), rule: rule}
		l.entries[key] = entry
	}
	entry.seen = now

	res := entry.lim.ReserveN(now, 1)
	if !res.OK() {
		return false, 0
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Len reports how many limiters are held.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// sweep drops limiters idle past the TTL whose bucket has refilled, so a
// dropped key comes back with the same budget it left with.
func (l *RateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idleTTL {
		return
	}
	l.lastSweep = now
	for key, entry := range l.entries {
		if now.Sub(entry.seen) < l.idleTTL {
			continue
		}
		if entry.lim.TokensAt(now) < float64(entry.rule.Burst) {
			continue
		}
		delete(l.entries, key)
	}
}
