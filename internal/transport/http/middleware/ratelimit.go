package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"teambot/internal/transport/http/response"
)

// RateLimit enforces a per-client request budget. Clients are keyed by
// resolved user id when authenticated, client IP otherwise. Idle
// limiters are dropped after an hour.
func RateLimit(maxRequests, windowSeconds int) gin.HandlerFunc {
	if maxRequests <= 0 || windowSeconds <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	type entry struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*entry)
	)
	limit := rate.Limit(float64(maxRequests) / float64(windowSeconds))

	cleanup := func(now time.Time) {
		for key, e := range clients {
			if now.Sub(e.lastSeen) > time.Hour {
				delete(clients, key)
			}
		}
	}

	return func(c *gin.Context) {
		key := c.GetString(ContextUserIDKey)
		if key == "" {
			key = c.ClientIP()
		}

		now := time.Now()
		mu.Lock()
		e, ok := clients[key]
		if !ok {
			e = &entry{limiter: rate.NewLimiter(limit, maxRequests)}
			clients[key] = e
			cleanup(now)
		}
		e.lastSeen = now
		allowed := e.limiter.Allow()
		mu.Unlock()

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, response.CodeRateLimited, "rate limit exceeded")
			c.Abort()
			return
		}
		c.Next()
	}
}
