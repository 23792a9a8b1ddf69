package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"analytics-api/internal/models"
	"analytics-api/internal/service"
	"github.com/gin-gonic/gin"
)

// Context keys set by APIKeyAuth for downstream handlers.
const (
	ContextAppID   = "app_id"
	ContextAppName = "app_name"
)

// Authenticator resolves a presented API key to a tenant app.
type Authenticator interface {
	Authenticate(ctx context.Context, apiKey string) (*models.App, error)
}

// APIKeyAuth gates a route on a valid x-api-key header and attaches the
// resolved tenant to the request context. Lookup failures reject the
// request; this gate never fails open.
func APIKeyAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := strings.TrimSpace(c.GetHeader("x-api-key"))

		if apiKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Missing API key in headers",
			})
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		app, err := auth.Authenticate(ctx, apiKey)

		if errors.Is(err, service.ErrKeyExpired) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "API key has expired",
			})
			c.Abort()
			return
		}

		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
			c.Abort()
			return
		}

		if app == nil {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Invalid or revoked API key",
			})
			c.Abort()
			return
		}

		c.Set(ContextAppID, app.ID)
		c.Set(ContextAppName, app.Name)

		c.Next()
	}
}
