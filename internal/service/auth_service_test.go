package service

import (
	"context"
	"testing"
	"time"

	"github.com/nevtik/eduvate-backend/internal/config"
	"github.com/nevtik/eduvate-backend/internal/model"
	"github.com/nevtik/eduvate-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) *AuthService {
	t.Helper()
	db := newTestDB(t)
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4, // minimum cost keeps the suite fast
	}
	return NewAuthService(cfg, repository.NewUserRepository(db))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, &model.RegisterRequest{
		Name:     "Andi",
		Email:    "andi@example.test",
		Password: "rahasia1",
		Role:     model.RoleStudent,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "rahasia1", user.PasswordHash)

	token, logged, err := svc.Login(ctx, "andi@example.test", "rahasia1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, logged.ID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.RoleStudent, claims.Role)
	assert.Equal(t, "Andi", claims.Name)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &model.RegisterRequest{
		Name:     "Budi",
		Email:    "budi@example.test",
		Password: "rahasia1",
		Role:     model.RoleStudent,
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "budi@example.test", "salah")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown email fails with the same error as a wrong password.
	_, _, err = svc.Login(ctx, "tidakada@example.test", "rahasia1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	req := &model.RegisterRequest{
		Name:     "Citra",
		Email:    "citra@example.test",
		Password: "rahasia1",
		Role:     model.RoleStudent,
	}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, &model.RegisterRequest{
		Name:     "Dewi",
		Email:    "dewi@example.test",
		Password: "rahasia1",
		Role:     model.RoleMentor,
	})
	require.NoError(t, err)

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token + "x")
	assert.Error(t, err)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, &model.RegisterRequest{
		Name:     "Eka",
		Email:    "eka@example.test",
		Password: "lama123",
		Role:     model.RoleStudent,
	})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, "tebakan", "baru123")
	assert.ErrorIs(t, err, ErrWrongOldPassword)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "lama123", "baru123"))

	_, _, err = svc.Login(ctx, "eka@example.test", "lama123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "eka@example.test", "baru123")
	assert.NoError(t, err)
}
