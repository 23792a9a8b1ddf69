package service

import (
	"context"
	"sync"
	"testing"

	"analytics-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers struct {
	mu    sync.Mutex
	users []*models.User
}

func (s *stubUsers) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *user
	s.users = append(s.users, &stored)
	return nil
}

func (s *stubUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			found := *user
			return &found, nil
		}
	}
	return nil, nil
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc := NewAuthService(&stubUsers{}, "test-secret", 1)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "ops@example.com", "hunter22hunter22", "Ops"))

	token, err := svc.Login(ctx, "ops@example.com", "hunter22hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims["email"])
	assert.Equal(t, "admin", claims["role"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewAuthService(&stubUsers{}, "test-secret", 1)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "ops@example.com", "hunter22hunter22", "Ops"))

	_, err := svc.Login(ctx, "ops@example.com", "wrong-password")
	assert.Error(t, err)

	_, err = svc.Login(ctx, "nobody@example.com", "hunter22hunter22")
	assert.Error(t, err)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := NewAuthService(&stubUsers{}, "test-secret", 1)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "ops@example.com", "hunter22hunter22", "Ops"))
	assert.Error(t, svc.Register(ctx, "ops@example.com", "hunter22hunter22", "Ops"))
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	issuer := NewAuthService(&stubUsers{}, "secret-a", 1)
	verifier := NewAuthService(&stubUsers{}, "secret-b", 1)
	ctx := context.Background()

	require.NoError(t, issuer.Register(ctx, "ops@example.com", "hunter22hunter22", "Ops"))
	token, err := issuer.Login(ctx, "ops@example.com", "hunter22hunter22")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}
