package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger writes one line per request, tagging authenticated analytics
// traffic with the tenant app resolved by APIKeyAuth.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		app := c.GetString(ContextAppName)
		if app == "" {
			app = "-"
		}

		log.Printf("[%s] %s %s %s - %d - %v - %s",
			c.GetString("request_id"),
			app,
			c.Request.Method,
			path,
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
		)
	}
}
