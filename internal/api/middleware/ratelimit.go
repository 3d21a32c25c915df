package middleware

import (
	"net/http"
	"sync"

	"portfolio-doctor/internal/api/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewRateLimiter returns nil when rps <= 0, which disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (l *RateLimiter) limiter(client string) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.limiters[client]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.limiters[client]; ok {
		return lim
	}
	lim = rate.NewLimiter(l.rps, l.burst)
	l.limiters[client] = lim
	return lim
}

// Allow reports whether client may make a request now.
func (l *RateLimiter) Allow(client string) bool {
	if l == nil {
		return true
	}
	return l.limiter(client).Allow()
}

// RateLimit rejects requests over the limit with 429 RATE_LIMITED.
func RateLimit(l *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.Allow(c.ClientIP()) {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "RATE_LIMITED",
				Message: "Too many requests, slow down",
			},
		})
	}
}
