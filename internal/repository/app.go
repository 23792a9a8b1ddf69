package repository

import (
	"context"

	"analytics-api/internal/models"
	"analytics-api/internal/storage"
	"gorm.io/gorm"
)

// AppRepository is the application directory: every registered tenant
// app and its API key.
type AppRepository struct {
	db *storage.Postgres
}

func NewAppRepository(db *storage.Postgres) *AppRepository {
	return &AppRepository{db: db}
}

func (r *AppRepository) Create(ctx context.Context, app *models.App) error {
	return r.db.DB.WithContext(ctx).Create(app).Error
}

// FindByAPIKey looks the key up regardless of active status, so revoke
// stays idempotent on already-revoked keys.
func (r *AppRepository) FindByAPIKey(ctx context.Context, apiKey string) (*models.App, error) {
	var app models.App
	err := r.db.DB.WithContext(ctx).
		Where("api_key = ?", apiKey).
		First(&app).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}

	return &app, err
}

func (r *AppRepository) FindActiveByAPIKey(ctx context.Context, apiKey string) (*models.App, error) {
	var app models.App
	err := r.db.DB.WithContext(ctx).
		Where("api_key = ? AND is_active = ?", apiKey, true).
		First(&app).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}

	return &app, err
}

func (r *AppRepository) FindActiveByName(ctx context.Context, name string) (*models.App, error) {
	var app models.App
	err := r.db.DB.WithContext(ctx).
		Where("name = ? AND is_active = ?", name, true).
		First(&app).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}

	return &app, err
}

func (r *AppRepository) List(ctx context.Context) ([]models.App, error) {
	var apps []models.App
	err := r.db.DB.WithContext(ctx).
		Order("created_at DESC").
		Find(&apps).Error

	return apps, err
}

// Deactivate flips is_active off. Apps are never physically deleted.
func (r *AppRepository) Deactivate(ctx context.Context, apiKey string) error {
	return r.db.DB.WithContext(ctx).
		Model(&models.App{}).
		Where("api_key = ?", apiKey).
		Update("is_active", false).Error
}
