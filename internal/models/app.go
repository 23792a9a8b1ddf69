package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// App is a registered tenant application. Its API key scopes every
// event it submits.
type App struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Name           string     `gorm:"not null;index" json:"name"`
	URL            string     `json:"url,omitempty"`
	APIKey         string     `gorm:"uniqueIndex;not null" json:"api_key"`
	IsActive       bool       `gorm:"default:true" json:"is_active"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (a *App) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Expired reports whether the app's key has an expiration date in the past.
func (a *App) Expired(now time.Time) bool {
	return a.ExpirationDate != nil && a.ExpirationDate.Before(now)
}

func (App) TableName() string {
	return "apps"
}
