package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/consultport/backend/internal/config"
	"github.com/consultport/backend/internal/domain"
)

func newTestAuthUsecase() (*AuthUsecase, *fakeUserRepo, *fakeRefreshTokenRepo) {
	userRepo := newFakeUserRepo()
	tokenRepo := newFakeRefreshTokenRepo()
	cfg := &config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
	}
	return NewAuthUsecase(userRepo, tokenRepo, cfg), userRepo, tokenRepo
}

func TestRegisterAndLogin(t *testing.T) {
	auth, _, _ := newTestAuthUsecase()

	user, tokens, err := auth.Register("dev@example.com", "hunter2hunter2", "Dev")
	require.NoError(t, err)
	require.Equal(t, domain.RoleConsultant, user.Role)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)
	require.Greater(t, tokens.ExpiresAt, time.Now().Unix())

	_, _, err = auth.Register("dev@example.com", "other-password", "Dev")
	require.ErrorIs(t, err, ErrEmailExists)

	loggedIn, _, err := auth.Login("dev@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, user.ID, loggedIn.ID)

	_, _, err = auth.Login("dev@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = auth.Login("nobody@example.com", "hunter2hunter2")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateAccessToken(t *testing.T) {
	auth, _, _ := newTestAuthUsecase()

	user, tokens, err := auth.Register("dev@example.com", "hunter2hunter2", "Dev")
	require.NoError(t, err)

	claims, err := auth.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, user.Email, claims.Email)
	require.Equal(t, domain.RoleConsultant, claims.Role)

	_, err = auth.ValidateAccessToken("not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenRotation(t *testing.T) {
	auth, _, _ := newTestAuthUsecase()

	_, tokens, err := auth.Register("dev@example.com", "hunter2hunter2", "Dev")
	require.NoError(t, err)

	rotated, err := auth.RefreshToken(tokens.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// The presented refresh token is single-use.
	_, err = auth.RefreshToken(tokens.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = auth.RefreshToken(rotated.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshTokenExpired(t *testing.T) {
	auth, _, tokenRepo := newTestAuthUsecase()

	_, tokens, err := auth.Register("dev@example.com", "hunter2hunter2", "Dev")
	require.NoError(t, err)

	stored, err := tokenRepo.GetByTokenHash(hashToken(tokens.RefreshToken))
	require.NoError(t, err)
	stored.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, tokenRepo.Create(stored))

	_, err = auth.RefreshToken(tokens.RefreshToken)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestLogout(t *testing.T) {
	auth, _, _ := newTestAuthUsecase()

	_, tokens, err := auth.Register("dev@example.com", "hunter2hunter2", "Dev")
	require.NoError(t, err)

	require.NoError(t, auth.Logout(tokens.RefreshToken))

	_, err = auth.RefreshToken(tokens.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}
