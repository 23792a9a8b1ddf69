package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"analytics-api/internal/cache"
	"analytics-api/internal/models"
	"github.com/google/uuid"
)

// ErrKeyExpired marks a key that resolved to an app whose expiration
// date has passed. The caller maps it to Forbidden.
var ErrKeyExpired = errors.New("api key has expired")

// ErrUnknownKey marks a revoke attempt against a key that was never
// issued.
var ErrUnknownKey = errors.New("unknown api key")

const appRecordTTL = 5 * time.Minute

// AppDirectory is the persistence surface AppService needs; implemented
// by repository.AppRepository.
type AppDirectory interface {
	Create(ctx context.Context, app *models.App) error
	FindByAPIKey(ctx context.Context, apiKey string) (*models.App, error)
	FindActiveByAPIKey(ctx context.Context, apiKey string) (*models.App, error)
	FindActiveByName(ctx context.Context, name string) (*models.App, error)
	List(ctx context.Context) ([]models.App, error)
	Deactivate(ctx context.Context, apiKey string) error
}

// AppService manages tenant registration and resolves presented API
// keys to tenants. Resolved records are cached in the key-value store
// for a few minutes; revocation deletes the record so it takes effect
// immediately.
type AppService struct {
	directory AppDirectory
	kv        cache.Store
}

func NewAppService(directory AppDirectory, kv cache.Store) *AppService {
	return &AppService{
		directory: directory,
		kv:        kv,
	}
}

// Register creates a tenant app with a fresh API key expiring in one
// year.
func (s *AppService) Register(ctx context.Context, name, url string) (*models.App, error) {
	expiration := time.Now().AddDate(1, 0, 0)

	app := &models.App{
		ID:             uuid.New(),
		Name:           name,
		URL:            url,
		APIKey:         uuid.NewString(),
		IsActive:       true,
		ExpirationDate: &expiration,
	}

	if err := s.directory.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to register app: %w", err)
	}

	return app, nil
}

func (s *AppService) GetByName(ctx context.Context, name string) (*models.App, error) {
	return s.directory.FindActiveByName(ctx, name)
}

func (s *AppService) List(ctx context.Context) ([]models.App, error) {
	return s.directory.List(ctx)
}

// Revoke deactivates the app owning the key. Revoking an already
// revoked key succeeds again; apps are never deleted.
func (s *AppService) Revoke(ctx context.Context, apiKey string) error {
	app, err := s.directory.FindByAPIKey(ctx, apiKey)
	if err != nil {
		return err
	}
	if app == nil {
		return ErrUnknownKey
	}

	if err := s.directory.Deactivate(ctx, apiKey); err != nil {
		return err
	}

	// Drop the cached record so the revocation is visible to the very
	// next request.
	if err := s.kv.Del(ctx, appRecordKey(apiKey)); err != nil {
		return err
	}

	return nil
}

// Authenticate resolves an API key to its tenant. A nil app with a nil
// error means the key is unknown or revoked; ErrKeyExpired means the
// key resolved but has lapsed. Any other error is a store failure and
// the request must be rejected.
func (s *AppService) Authenticate(ctx context.Context, apiKey string) (*models.App, error) {
	recordKey := appRecordKey(apiKey)

	if cached, err := s.kv.Get(ctx, recordKey); err == nil && cached != "" {
		var app models.App
		if err := json.Unmarshal([]byte(cached), &app); err == nil {
			return s.checkExpiry(&app)
		}
	}

	app, err := s.directory.FindActiveByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, nil
	}

	if data, err := json.Marshal(app); err == nil {
		s.kv.Set(ctx, recordKey, data, appRecordTTL)
	}

	return s.checkExpiry(app)
}

func (s *AppService) checkExpiry(app *models.App) (*models.App, error) {
	if app.Expired(time.Now()) {
		return nil, ErrKeyExpired
	}
	return app, nil
}

func appRecordKey(apiKey string) string {
	return "app:record:" + apiKey
}
