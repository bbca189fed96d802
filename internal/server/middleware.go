package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	"modelpicker/internal/core"
	"modelpicker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MaxBodySize caps request bodies. Every route is a GET, so this is small.
const MaxBodySize = 1 << 20

func (s *Server) maxBodySizeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodySize)
		c.Next()
	}
}

// requestIDMiddleware echoes a sane incoming X-Request-ID or mints a UUID.
func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(core.HeaderXRequestID))
		if id == "" || len(id) > core.RequestIDHeaderMaxLen || strings.ContainsAny(id, "\r\n") {
			id = uuid.NewString()
		}
		c.Set(core.GinContextRequestID, id)
		c.Header(core.HeaderXRequestID, id)
		c.Next()
	}
}

type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitorInfo
	rate     int
	window   time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

type visitorInfo struct {
	count       int
	windowStart time.Time
}

func newRateLimiter(ratePerMinute int) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitorInfo),
		rate:     ratePerMinute,
		window:   core.RateLimitWindow,
		done:     make(chan struct{}),
	}
	go rl.cleanupLoop(core.RateLimitCleanupInterval)
	return rl
}

func (rl *rateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.windowStart) > rl.window {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		case <-rl.done:
			return
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// allow counts a request in the caller's fixed one-minute window.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := time.Now()
	v, exists := rl.visitors[ip]
	if !exists || now.Sub(v.windowStart) > rl.window {
		rl.visitors[ip] = &visitorInfo{count: 1, windowStart: now}
		return true
	}
	v.count++
	return v.count <= rl.rate
}

func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.rateLimiter.allow(c.ClientIP()) {
			c.Header("Retry-After", "60")
			respondWithError(c, http.StatusTooManyRequests, core.ErrorCodeRateLimited, "Rate limit exceeded.")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) isValidAdminKey(providedKey string) bool {
	providedBytes := []byte(providedKey)
	for validKey := range s.validAdminKeys {
		validBytes := []byte(validKey)
		if len(providedBytes) == len(validBytes) && subtle.ConstantTimeCompare(providedBytes, validBytes) == 1 {
			return true
		}
	}
	return false
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	allowOrigin := s.config.CORSAllowOrigin
	if allowOrigin == "" {
		allowOrigin = core.DefaultCORSOrigin
	}

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowOrigin)
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, x-api-key, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID")
		c.Header("Access-Control-Max-Age", core.CORSMaxAge)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// authenticateAdmin guards operator endpoints. x-api-key wins over a Bearer
// token when both are sent.
func (s *Server) authenticateAdmin(c *gin.Context) {
	if len(s.validAdminKeys) == 0 {
		respondWithError(c, http.StatusServiceUnavailable, core.ErrorCodeServiceUnavailable, "No admin API keys configured.")
		c.Abort()
		return
	}

	if apiKey := c.GetHeader(core.HeaderXAPIKey); apiKey != "" {
		if s.isValidAdminKey(apiKey) {
			return
		}
		s.config.Logger.Warn("Rejected admin key %s (x-api-key) from %s", util.MaskSecret(apiKey), c.ClientIP())
		respondWithError(c, http.StatusForbidden, core.ErrorCodeForbidden, "Invalid admin API key (x-api-key).")
		c.Abort()
		return
	}

	if authHeader := c.GetHeader(core.HeaderAuthorization); authHeader != "" {
		token := strings.TrimPrefix(authHeader, core.AuthBearerPrefix)
		if s.isValidAdminKey(token) {
			return
		}
		s.config.Logger.Warn("Rejected admin key %s (Bearer) from %s", util.MaskSecret(token), c.ClientIP())
		respondWithError(c, http.StatusForbidden, core.ErrorCodeForbidden, "Invalid admin API key (Bearer token).")
		c.Abort()
		return
	}

	respondWithError(c, http.StatusUnauthorized, core.ErrorCodeUnauthorized, "API key required in Authorization header (Bearer) or x-api-key header.")
	c.Abort()
}
