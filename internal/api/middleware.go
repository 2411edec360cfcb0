package api

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"
)

// ipLimiter tracks one rate.Limiter per client IP, adapted from the
// teacher's IPRateLimiter: per-IP token buckets with periodic sweep of
// entries that haven't been seen in a while.
type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	limit    rate.Limit
	burst    int
}

func newIPLimiter(requestsPerMinute, burst int) *ipLimiter {
	l := &ipLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		limit:    rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:    burst,
	}
	go l.sweep()
	return l
}

func (l *ipLimiter) sweep() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-time.Hour)
		l.mu.Lock()
		for ip, seen := range l.lastSeen {
			if seen.Before(cutoff) {
				delete(l.limiters, ip)
				delete(l.lastSeen, ip)
			}
		}
		l.mu.Unlock()
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = limiter
	}
	l.lastSeen[ip] = time.Now()
	return limiter.Allow()
}

// RateLimit rejects requests past requestsPerMinute per client IP with
// 429.
func RateLimit(requestsPerMinute, burst int) gin.HandlerFunc {
	limiter := newIPLimiter(requestsPerMinute, burst)
	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// submitterIDKey is the gin context key OptionalSubmitterAuth stores the
// extracted submitter identity under.
const submitterIDKey = "submitter_id"

// OptionalSubmitterAuth extracts a submitter identity from a Bearer JWT
// when present, but never rejects a request for having none — job
// submission doesn't require authentication, it merely records who
// submitted when a token is supplied (spec.md §6, repurposing the
// teacher's JWT claims).
func OptionalSubmitterAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.Next()
			return
		}

		claims := &jwt.RegisteredClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err == nil && parsed.Valid {
			c.Set(submitterIDKey, claims.Subject)
		}
		c.Next()
	}
}

func submitterID(c *gin.Context) string {
	if v, ok := c.Get(submitterIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
