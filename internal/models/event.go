package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Metadata is a free-form JSON object attached to an event (browser, OS,
// screen size and the like). Stored as jsonb; a nil map means absent.
type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported metadata column type")
	}

	return json.Unmarshal(raw, m)
}

type Event struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	AppID     uuid.UUID `gorm:"type:uuid;not null;index" json:"app_id"`
	Event     string    `gorm:"not null;index" json:"event"`
	URL       string    `gorm:"not null" json:"url"`
	Referrer  string    `json:"referrer,omitempty"`
	Device    string    `json:"device,omitempty"`
	IPAddress string    `gorm:"index" json:"ip_address,omitempty"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	Metadata  Metadata  `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (Event) TableName() string {
	return "events"
}
