package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*limiterEntry
	limit   rate.Limit
	burst   int
}

// NewRateLimiter creates a rate limiter.
// maxRequests is the burst size, perDuration is the window over which maxRequests are allowed.
func NewRateLimiter(maxRequests int, perDuration time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*limiterEntry),
		limit:   rate.Every(perDuration / time.Duration(maxRequests)),
		burst:   maxRequests,
	}

	go rl.cleanup()

	return rl
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.sweep(time.Now(), 10*time.Minute)
	}
}

// sweep drops clients idle for longer than maxIdle.
func (rl *RateLimiter) sweep(now time.Time, maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, entry := range rl.clients {
		if now.Sub(entry.lastSeen) > maxIdle {
			delete(rl.clients, ip)
		}
	}
}

func (rl *RateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	entry, exists := rl.clients[clientIP]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[clientIP] = entry
	}
	entry.lastSeen = time.Now()
	rl.mu.Unlock()

	return entry.limiter.Allow()
}

// Middleware returns a gin middleware that rate limits requests.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if !rl.allow(clientIP) {
			log.WithFields(log.Fields{"ip": clientIP, "path": c.FullPath()}).Warn("rate limit exceeded")
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
			c.Abort()
			return
		}
		c.Next()
	}
}
