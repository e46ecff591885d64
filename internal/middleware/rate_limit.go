// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientBucket pairs a token bucket with the last time its owner was
// seen, so idle entries can be swept.
type clientBucket struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client IP. Without the
// sweep the map would grow with every address ever seen.
type RateLimiter struct {
	mtx     sync.Mutex
	clients map[string]*clientBucket
	limit   rate.Limit
	burst   int
}

const clientIdleTTL = 3 * time.Minute

func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientBucket),
		limit:   limit,
		burst:   burst,
	}
	go rl.sweepIdle()
	return rl
}

func (rl *RateLimiter) sweepIdle() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mtx.Lock()
		for ip, client := range rl.clients {
			if time.Since(client.lastSeen) > clientIdleTTL {
				delete(rl.clients, ip)
			}
		}
		rl.mtx.Unlock()
	}
}

func (rl *RateLimiter) bucketFor(ip string) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	client, ok := rl.clients[ip]
	if !ok {
		client = &clientBucket{bucket: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = client
	}
	client.lastSeen = time.Now()
	return client.bucket
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.bucketFor(c.ClientIP()).Allow() {
			c.Header("Retry-After", "1")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests, slow down",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Tiers: browsing the catalog is cheap; credential guessing and image
// uploads are not.
var (
	browseLimiter     = NewRateLimiter(rate.Every(100*time.Millisecond), 20)
	credentialLimiter = NewRateLimiter(rate.Every(12*time.Second), 5)
	mediaLimiter      = NewRateLimiter(rate.Every(6*time.Second), 10)
)

func GeneralRateLimit() gin.HandlerFunc { return browseLimiter.Middleware() }

func AuthRateLimit() gin.HandlerFunc { return credentialLimiter.Middleware() }

func UploadRateLimit() gin.HandlerFunc { return mediaLimiter.Middleware() }
