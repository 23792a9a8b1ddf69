package service

import (
	"context"
	"errors"
	"time"

	"analytics-api/internal/cache"
	"analytics-api/internal/models"
	"analytics-api/internal/repository"
	"github.com/google/uuid"
)

// ErrInvalidDate marks an unparsable startDate/endDate query value.
var ErrInvalidDate = errors.New("invalid date format")

// ErrInvalidAppID marks an app_id query value that is not a UUID.
var ErrInvalidAppID = errors.New("invalid app_id")

const recentEventLimit = 10

// EventStore is the persistence surface AnalyticsService needs;
// implemented by repository.EventRepository.
type EventStore interface {
	Insert(ctx context.Context, event *models.Event) error
	Count(ctx context.Context, filter repository.EventFilter) (int64, error)
	CountDistinct(ctx context.Context, filter repository.EventFilter, column string) (int64, error)
	GroupCount(ctx context.Context, filter repository.EventFilter, column string) (map[string]int64, error)
	FindRecent(ctx context.Context, filter repository.EventFilter, limit int) ([]models.Event, error)
}

// AnalyticsService collects events and serves the aggregate endpoints,
// consulting the response cache before hitting the event store.
type AnalyticsService struct {
	events EventStore
	cache  *cache.Cache
}

func NewAnalyticsService(events EventStore, cache *cache.Cache) *AnalyticsService {
	return &AnalyticsService{
		events: events,
		cache:  cache,
	}
}

func (s *AnalyticsService) Collect(ctx context.Context, event *models.Event) error {
	return s.events.Insert(ctx, event)
}

// SummaryQuery carries the raw query parameters; the date strings feed
// the cache key unparsed so identical queries share an entry.
type SummaryQuery struct {
	Event          string
	StartDate      string
	EndDate        string
	RequestedAppID string
	CallerAppID    uuid.UUID
}

type EventSummary struct {
	Event       string           `json:"event"`
	Count       int64            `json:"count"`
	UniqueUsers int64            `json:"uniqueUsers"`
	DeviceData  map[string]int64 `json:"deviceData"`
}

func (s *AnalyticsService) EventSummary(ctx context.Context, q SummaryQuery) (*EventSummary, error) {
	filter, err := q.filter()
	if err != nil {
		return nil, err
	}

	// Key on the resolved app, not the raw app_id parameter: two tenants
	// omitting app_id must never share a cache entry.
	key := cache.EventSummaryKey(q.Event, q.StartDate, q.EndDate, filter.AppID.String())

	var cached EventSummary
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	count, err := s.events.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	uniqueUsers, err := s.events.CountDistinct(ctx, filter, "ip_address")
	if err != nil {
		return nil, err
	}

	deviceData, err := s.events.GroupCount(ctx, filter, "device")
	if err != nil {
		return nil, err
	}

	summary := &EventSummary{
		Event:       q.Event,
		Count:       count,
		UniqueUsers: uniqueUsers,
		DeviceData:  deviceData,
	}

	s.cache.Set(ctx, key, summary)

	return summary, nil
}

func (q SummaryQuery) filter() (repository.EventFilter, error) {
	filter := repository.EventFilter{Event: q.Event}

	if q.StartDate != "" {
		start, err := parseDate(q.StartDate)
		if err != nil {
			return filter, ErrInvalidDate
		}
		filter.Start = &start
	}
	if q.EndDate != "" {
		end, err := parseDate(q.EndDate)
		if err != nil {
			return filter, ErrInvalidDate
		}
		filter.End = &end
	}

	// Without an explicit app_id the summary is scoped to the caller.
	if q.RequestedAppID != "" {
		appID, err := uuid.Parse(q.RequestedAppID)
		if err != nil {
			return filter, ErrInvalidAppID
		}
		filter.AppID = appID
	} else {
		filter.AppID = q.CallerAppID
	}

	return filter, nil
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

type RecentEvent struct {
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	URL       string    `json:"url"`
}

type UserStats struct {
	UserID        string          `json:"userId"`
	TotalEvents   int             `json:"totalEvents"`
	DeviceDetails models.Metadata `json:"deviceDetails"`
	IPAddress     string          `json:"ipAddress"`
	RecentEvents  []RecentEvent   `json:"recentEvents"`
}

// UserStats summarizes the latest activity of one user (identified by
// IP address) within the caller's app. A nil result with nil error
// means no data exists for the user.
func (s *AnalyticsService) UserStats(ctx context.Context, userID string, appID uuid.UUID) (*UserStats, error) {
	key := cache.UserStatsKey(userID, appID.String())

	var cached UserStats
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	events, err := s.events.FindRecent(ctx, repository.EventFilter{
		AppID:     appID,
		IPAddress: userID,
	}, recentEventLimit)
	if err != nil {
		return nil, err
	}

	if len(events) == 0 {
		return nil, nil
	}

	deviceDetails := events[0].Metadata
	if deviceDetails == nil {
		deviceDetails = models.Metadata{}
	}

	recent := make([]RecentEvent, 0, len(events))
	for _, event := range events {
		recent = append(recent, RecentEvent{
			Event:     event.Event,
			Timestamp: event.Timestamp,
			URL:       event.URL,
		})
	}

	stats := &UserStats{
		UserID:        userID,
		TotalEvents:   len(events),
		DeviceDetails: deviceDetails,
		IPAddress:     userID,
		RecentEvents:  recent,
	}

	s.cache.Set(ctx, key, stats)

	return stats, nil
}
