package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubLimiter struct {
	allowed   bool
	err       error
	limit     int
	remaining int
	reset     time.Time
}

func (l *stubLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	return l.allowed, l.remaining, l.err
}

func (l *stubLimiter) Limit() int {
	return l.limit
}

func (l *stubLimiter) Window() time.Duration {
	return time.Minute
}

func (l *stubLimiter) Reset(ctx context.Context, key string) (time.Time, error) {
	return l.reset, nil
}

func limitedRouter(limiter *stubLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimit(limiter))
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestRateLimitRequiresAPIKey(t *testing.T) {
	router := limitedRouter(&stubLimiter{allowed: true})

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Missing API key for rate limiting"}`, rr.Body.String())
}

func TestRateLimitAllowsAndReportsHeaders(t *testing.T) {
	router := limitedRouter(&stubLimiter{allowed: true, limit: 50, remaining: 49})

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-api-key", "tenant-key")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "50", rr.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "49", rr.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitRejectsOverLimit(t *testing.T) {
	router := limitedRouter(&stubLimiter{
		allowed: false,
		limit:   5,
		reset:   time.Now().Add(30 * time.Second),
	})

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-api-key", "tenant-key")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.JSONEq(t, `{"error":"Rate limit exceeded"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Empty(t, rr.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitFailsClosedOnLimiterError(t *testing.T) {
	router := limitedRouter(&stubLimiter{err: errors.New("connection refused")})

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-api-key", "tenant-key")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
