package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/probfile/tracker/config"
	"github.com/probfile/tracker/utils"
)

const limiterIdleTTL = 5 * time.Minute

type ipLimiter struct {
	bucket  *rate.Limiter
	expires time.Time
}

var (
	limiters   = map[string]*ipLimiter{}
	limitersMu sync.Mutex
)

// RateLimitMiddleware throttles requests per client IP with a token bucket.
// Applied to the unauthenticated auth endpoints only; authenticated traffic
// is trusted not to brute-force.
func RateLimitMiddleware() gin.HandlerFunc {
	cfg := config.Get()
	perMinute := cfg.RateLimitPerMinute
	if perMinute < 1 {
		perMinute = 1
	}
	limit := rate.Every(time.Minute / time.Duration(perMinute))
	burst := perMinute / 2
	if burst < 1 {
		burst = 1
	}

	return func(ctx *gin.Context) {
		if !limiterFor(ctx.ClientIP(), limit, burst).bucket.Allow() {
			utils.Error(ctx, http.StatusTooManyRequests, 42901, "rate limit exceeded")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func limiterFor(ip string, limit rate.Limit, burst int) *ipLimiter {
	limitersMu.Lock()
	defer limitersMu.Unlock()

	now := time.Now()
	for key, l := range limiters {
		if now.After(l.expires) {
			delete(limiters, key)
		}
	}

	l, ok := limiters[ip]
	if !ok {
		l = &ipLimiter{bucket: rate.NewLimiter(limit, burst)}
		limiters[ip] = l
	}
	l.expires = now.Add(limiterIdleTTL)
	return l
}
