package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabletv-backend/internal/auth"
	"cabletv-backend/internal/config"
	"cabletv-backend/internal/models"
	"cabletv-backend/internal/store/memory"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpirationHours = 1
	cfg.JWT.Issuer = "cabletv-backend"
	return NewUserService(memory.New().Backend().Users, auth.NewJWTManager(cfg))
}

func TestLogin(t *testing.T) {
	users := newUserService(t)
	ctx := context.Background()

	created, err := users.Create(ctx, "Operator", "op@example.com", "s3cret", models.RoleAdmin)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", created.PasswordHash)

	resp, err := users.Login(ctx, models.LoginRequest{Email: "op@example.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, created.ID, resp.User.ID)

	_, err = users.Login(ctx, models.LoginRequest{Email: "op@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown accounts get the same error as a bad password.
	_, err = users.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "s3cret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	users := newUserService(t)

	_, err := users.Create(context.Background(), "X", "x@example.com", "pw", models.Role("superuser"))
	assert.Error(t, err)
}
