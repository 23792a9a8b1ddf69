package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"analytics-api/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

// RateLimit bounds the request rate per API key using the given
// limiter. A limiter/store failure rejects the request; the gate never
// fails open.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := strings.TrimSpace(c.GetHeader("x-api-key"))

		if apiKey == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Missing API key for rate limiting",
			})
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		allowed, remaining, err := limiter.Allow(ctx, apiKey)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
			c.Abort()
			return
		}

		if !allowed {
			resetTime, _ := limiter.Reset(ctx, apiKey)

			retryAfter := int(time.Until(resetTime).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded",
			})
			c.Abort()
			return
		}

		// Remaining comes from the same atomic increment Allow consumed,
		// so the header never races with concurrent requests.
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.Limit()))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		c.Next()
	}
}
