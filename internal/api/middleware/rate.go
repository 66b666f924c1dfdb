package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
	// IdleTTL is how long an idle client's limiter is kept. Zero uses ten
	// minutes.
	IdleTTL time.Duration
}

// DefaultRateLimitConfig returns the default rate limit configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		Burst:             200,
		IdleTTL:           10 * time.Minute,
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clients holds one limiter per IP and forgets clients idle for longer than
// ttl. Sweeps happen inline, at most once per ttl.
type clients struct {
	mu        sync.Mutex
	cfg       RateLimitConfig
	ttl       time.Duration
	byIP      map[string]*client
	lastSweep time.Time
	now       func() time.Time
}

func newClients(cfg RateLimitConfig) *clients {
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &clients{cfg: cfg, ttl: ttl, byIP: make(map[string]*client), now: time.Now}
}

func (cs *clients) limiter(ip string) *rate.Limiter {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	now := cs.now()
	if now.Sub(cs.lastSweep) >= cs.ttl {
		for key, c := range cs.byIP {
			if now.Sub(c.lastSeen) >= cs.ttl {
				delete(cs.byIP, key)
			}
		}
		cs.lastSweep = now
	}

	c, ok := cs.byIP[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rate.Limit(cs.cfg.RequestsPerSecond), cs.cfg.Burst)}
		cs.byIP[ip] = c
	}
	c.lastSeen = now
	return c.limiter
}

func (cs *clients) size() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.byIP)
}

// RateLimit creates a per-IP rate limiting middleware.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	return rateLimit(newClients(cfg))
}

func rateLimit(cs *clients) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cs.limiter(c.ClientIP()).Allow() {
			tooMany(c)
			return
		}
		c.Next()
	}
}

// GlobalRateLimit creates a global rate limiting middleware.
func GlobalRateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			tooMany(c)
			return
		}
		c.Next()
	}
}

func tooMany(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"success": false,
		"kind":    "rate_limited",
		"error":   "rate limit exceeded",
	})
}
