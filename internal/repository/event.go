package repository

import (
	"context"
	"database/sql"
	"time"

	"analytics-api/internal/models"
	"analytics-api/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventRepository struct {
	db *storage.Postgres
}

func NewEventRepository(db *storage.Postgres) *EventRepository {
	return &EventRepository{db: db}
}

// EventFilter narrows aggregate queries. Zero-value fields are ignored.
type EventFilter struct {
	AppID     uuid.UUID
	Event     string
	IPAddress string
	Start     *time.Time
	End       *time.Time
}

func (f EventFilter) apply(db *gorm.DB) *gorm.DB {
	if f.AppID != uuid.Nil {
		db = db.Where("app_id = ?", f.AppID)
	}
	if f.Event != "" {
		db = db.Where("event = ?", f.Event)
	}
	if f.IPAddress != "" {
		db = db.Where("ip_address = ?", f.IPAddress)
	}
	if f.Start != nil {
		db = db.Where("timestamp >= ?", *f.Start)
	}
	if f.End != nil {
		db = db.Where("timestamp <= ?", *f.End)
	}
	return db
}

func (r *EventRepository) Insert(ctx context.Context, event *models.Event) error {
	return r.db.DB.WithContext(ctx).Create(event).Error
}

func (r *EventRepository) Count(ctx context.Context, filter EventFilter) (int64, error) {
	var count int64
	err := filter.apply(r.db.DB.WithContext(ctx).Model(&models.Event{})).
		Count(&count).Error

	return count, err
}

func (r *EventRepository) CountDistinct(ctx context.Context, filter EventFilter, column string) (int64, error) {
	var count int64
	err := filter.apply(r.db.DB.WithContext(ctx).Model(&models.Event{})).
		Distinct(column).
		Count(&count).Error

	return count, err
}

// GroupCount returns occurrences grouped by the given column. NULL and
// empty values fold into "unknown".
func (r *EventRepository) GroupCount(ctx context.Context, filter EventFilter, column string) (map[string]int64, error) {
	rows, err := filter.apply(r.db.DB.WithContext(ctx).Model(&models.Event{})).
		Select(column + ", COUNT(*) as count").
		Group(column).
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make(map[string]int64)
	for rows.Next() {
		var value sql.NullString
		var count int64

		if err := rows.Scan(&value, &count); err != nil {
			return nil, err
		}

		name := value.String
		if !value.Valid || name == "" {
			name = "unknown"
		}
		results[name] += count
	}

	return results, rows.Err()
}

func (r *EventRepository) FindRecent(ctx context.Context, filter EventFilter, limit int) ([]models.Event, error) {
	var events []models.Event
	err := filter.apply(r.db.DB.WithContext(ctx)).
		Order("timestamp DESC").
		Limit(limit).
		Find(&events).Error

	return events, err
}
