package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	message string
	ips     map[string]*visitor
	mu      sync.Mutex
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		message: "Too many requests, please slow down",
		ips:     make(map[string]*visitor),
	}
}

// NewStrictRateLimiter allows 5 attempts per minute per IP, for login and
// registration: a burst of 5 refilled one token every 12 seconds.
func NewStrictRateLimiter() *RateLimiter {
	rl := NewRateLimiter(float64(rate.Every(12*time.Second)), 5)
	rl.message = "Too many attempts, please wait a moment"
	return rl
}

func (rl *RateLimiter) get(ip string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	// forget idle clients
	for key, v := range rl.ips {
		if now.Sub(v.lastSeen) > 10*time.Minute {
			delete(rl.ips, key)
		}
	}

	v, ok := rl.ips[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.ips[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.get(c.ClientIP(), time.Now()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"status":  false,
				"message": rl.message,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
