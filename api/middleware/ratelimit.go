package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/xfeed/config"
	"github.com/use-agent/xfeed/models"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an identity's bucket survives without use.
const limiterIdleTTL = time.Hour

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// buckets holds one token bucket per identity.
type buckets struct {
	mu    sync.Mutex
	rps   rate.Limit
	burst int
	m     map[string]*bucket
}

func (b *buckets) get(identity string, now time.Time) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.m[identity]
	if !ok {
		e = &bucket{limiter: rate.NewLimiter(b.rps, b.burst)}
		b.m[identity] = e
	}
	e.lastSeen = now
	return e.limiter
}

func (b *buckets) evictIdle(cutoff time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, e := range b.m {
		if e.lastSeen.Before(cutoff) {
			delete(b.m, id)
		}
	}
}

// RateLimit returns per-identity token-bucket rate limiting middleware.
// The identity is the API key set by Auth, or the client IP. A rate of zero
// or less disables limiting.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	b := &buckets{
		rps:   rate.Limit(cfg.RequestsPerSecond),
		burst: max(cfg.Burst, 1),
		m:     make(map[string]*bucket),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for now := range ticker.C {
			b.evictIdle(now.Add(-limiterIdleTTL))
		}
	}()

	retryAfter := strconv.Itoa(int(math.Ceil(1 / cfg.RequestsPerSecond)))

	return func(c *gin.Context) {
		identity := c.ClientIP()
		if key, ok := c.Get(identityKey); ok {
			identity = "key:" + key.(string)
		}

		if !b.get(identity, time.Now()).Allow() {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{Error: "rate limit exceeded, please slow down"})
			return
		}
		c.Next()
	}
}
