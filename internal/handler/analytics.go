package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"analytics-api/internal/middleware"
	"analytics-api/internal/models"
	"analytics-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

type collectRequest struct {
	Event     string          `json:"event"`
	URL       string          `json:"url"`
	Referrer  string          `json:"referrer"`
	Device    string          `json:"device"`
	IPAddress string          `json:"ipAddress"`
	Timestamp time.Time       `json:"timestamp"`
	Metadata  models.Metadata `json:"metadata"`
}

func (r collectRequest) missingFields() []string {
	var missing []string
	if r.Event == "" {
		missing = append(missing, "event")
	}
	if r.URL == "" {
		missing = append(missing, "url")
	}
	if r.Timestamp.IsZero() {
		missing = append(missing, "timestamp")
	}
	return missing
}

// Handles POST /api/analytics/collect
func (h *AnalyticsHandler) Collect(c *gin.Context) {
	appID := c.MustGet(middleware.ContextAppID).(uuid.UUID)

	var req collectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if missing := req.missingFields(); len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing required fields: " + strings.Join(missing, ", "),
		})
		return
	}

	event := &models.Event{
		AppID:     appID,
		Event:     req.Event,
		URL:       req.URL,
		Referrer:  req.Referrer,
		Device:    req.Device,
		IPAddress: req.IPAddress,
		Timestamp: req.Timestamp,
		Metadata:  req.Metadata,
	}

	ctx := c.Request.Context()
	if err := h.analytics.Collect(ctx, event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to collect event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event collected successfully"})
}

// Handles GET /api/analytics/event-summary
func (h *AnalyticsHandler) EventSummary(c *gin.Context) {
	appID := c.MustGet(middleware.ContextAppID).(uuid.UUID)

	event := c.Query("event")
	if event == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event name is required"})
		return
	}

	query := service.SummaryQuery{
		Event:          event,
		StartDate:      c.Query("startDate"),
		EndDate:        c.Query("endDate"),
		RequestedAppID: c.Query("app_id"),
		CallerAppID:    appID,
	}

	ctx := c.Request.Context()
	summary, err := h.analytics.EventSummary(ctx, query)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
			return
		}
		if errors.Is(err, service.ErrInvalidAppID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid app_id"})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching event summary"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Handles GET /api/analytics/user-stats
func (h *AnalyticsHandler) UserStats(c *gin.Context) {
	appID := c.MustGet(middleware.ContextAppID).(uuid.UUID)

	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId (ipAddress) is required"})
		return
	}

	ctx := c.Request.Context()
	stats, err := h.analytics.UserStats(ctx, userID, appID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching user stats"})
		return
	}

	if stats == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No data found for this user"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
