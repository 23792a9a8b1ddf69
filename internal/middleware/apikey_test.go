package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"analytics-api/internal/models"
	"analytics-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct {
	app *models.App
	err error
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, apiKey string) (*models.App, error) {
	return s.app, s.err
}

func authRouter(auth Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(APIKeyAuth(auth))
	router.GET("/", func(c *gin.Context) {
		appID := c.MustGet(ContextAppID).(uuid.UUID)
		c.JSON(http.StatusOK, gin.H{
			"app_id":   appID,
			"app_name": c.GetString(ContextAppName),
		})
	})
	return router
}

func TestAPIKeyAuthMissingKey(t *testing.T) {
	router := authRouter(&stubAuthenticator{})

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"Missing API key in headers"}`, rr.Body.String())
}

func TestAPIKeyAuthUnknownKey(t *testing.T) {
	router := authRouter(&stubAuthenticator{})

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-api-key", "bogus")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid or revoked API key"}`, rr.Body.String())
}

func TestAPIKeyAuthExpiredKey(t *testing.T) {
	router := authRouter(&stubAuthenticator{err: service.ErrKeyExpired})

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-api-key", "stale")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"error":"API key has expired"}`, rr.Body.String())
}

func TestAPIKeyAuthStoreFailureFailsClosed(t *testing.T) {
	router := authRouter(&stubAuthenticator{err: errors.New("connection refused")})

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-api-key", "any")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestAPIKeyAuthAttachesTenant(t *testing.T) {
	app := &models.App{ID: uuid.New(), Name: "my-site", IsActive: true}
	router := authRouter(&stubAuthenticator{app: app})

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-api-key", " valid-key ")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), app.ID.String())
	assert.Contains(t, rr.Body.String(), "my-site")
}
