package handler

import (
	"errors"
	"net/http"

	"analytics-api/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler serves tenant registration and API key lifecycle.
type AuthHandler struct {
	apps *service.AppService
}

func NewAuthHandler(apps *service.AppService) *AuthHandler {
	return &AuthHandler{apps: apps}
}

// Handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}

	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "App name and url are required"})
		return
	}

	ctx := c.Request.Context()
	app, err := h.apps.Register(ctx, req.Name, req.URL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register app"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "App registered successfully",
		"appId":          app.ID,
		"apiKey":         app.APIKey,
		"expirationDate": app.ExpirationDate,
	})
}

// Handles GET /api/auth/api-key
func (h *AuthHandler) GetAPIKey(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "App name is required"})
		return
	}

	ctx := c.Request.Context()
	app, err := h.apps.GetByName(ctx, name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch API key"})
		return
	}

	if app == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Active app not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":           app.Name,
		"apiKey":         app.APIKey,
		"expirationDate": app.ExpirationDate,
	})
}

// Handles POST /api/auth/revoke
func (h *AuthHandler) Revoke(c *gin.Context) {
	var req struct {
		APIKey string `json:"apiKey"`
	}

	if err := c.ShouldBindJSON(&req); err != nil || req.APIKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid API key"})
		return
	}

	ctx := c.Request.Context()
	if err := h.apps.Revoke(ctx, req.APIKey); err != nil {
		if errors.Is(err, service.ErrUnknownKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid API key"})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke API key"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "API key revoked successfully"})
}
