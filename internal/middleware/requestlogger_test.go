package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"analytics-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	mu   sync.Mutex
	logs []models.RequestLog
}

func (s *fakeSink) CreateBatch(ctx context.Context, logs []models.RequestLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs = append(s.logs, logs...)
	return nil
}

func (s *fakeSink) all() []models.RequestLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.RequestLog, len(s.logs))
	copy(out, s.logs)
	return out
}

func TestRequestLoggerRecordsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sink := &fakeSink{}
	logger := NewRequestLogger(sink, 10)

	appID := uuid.New()

	router := gin.New()
	router.Use(logger.Middleware())
	router.GET("/tracked", func(c *gin.Context) {
		c.Set(ContextAppID, appID)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req, _ := http.NewRequest(http.MethodGet, "/tracked", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	// Close drains the channel and flushes the final batch.
	logger.Close()

	logs := sink.all()
	require.Len(t, logs, 1)
	assert.Equal(t, http.MethodGet, logs[0].Method)
	assert.Equal(t, "/tracked", logs[0].Path)
	assert.Equal(t, http.StatusOK, logs[0].StatusCode)
	require.NotNil(t, logs[0].AppID)
	assert.Equal(t, appID, *logs[0].AppID)
}

func TestRequestLoggerCloseFlushesPending(t *testing.T) {
	sink := &fakeSink{}
	logger := NewRequestLogger(sink, 10)

	for i := 0; i < 3; i++ {
		logger.logs <- models.RequestLog{Method: http.MethodGet, Path: "/"}
	}

	logger.Close()

	assert.Len(t, sink.all(), 3)
}
