package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/advent-api/internal/models"
	"github.com/noah-isme/advent-api/pkg/config"
	appErrors "github.com/noah-isme/advent-api/pkg/errors"
)

func newAuthFixture(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(
		config.AdminConfig{Username: "admin", PasswordHash: string(hash)},
		config.JWTConfig{Secret: "test-secret", Expiration: time.Hour},
		nil, nil,
	)
}

func TestAuthLoginIssuesValidToken(t *testing.T) {
	svc := newAuthFixture(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Role)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	svc := newAuthFixture(t)
	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginWrongUsername(t *testing.T) {
	svc := newAuthFixture(t)
	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "root", Password: "correct horse"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginRejectsEmptyPayload(t *testing.T) {
	svc := newAuthFixture(t)
	_, err := svc.Login(context.Background(), models.LoginRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthValidateTokenRejectsTampering(t *testing.T) {
	svc := newAuthFixture(t)
	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(res.AccessToken + "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, err = svc.ValidateToken("not-a-token")
	require.Error(t, err)
}

func TestAuthValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := newAuthFixture(t)
	other := NewAuthService(
		config.AdminConfig{Username: "admin", PasswordHash: "irrelevant"},
		config.JWTConfig{Secret: "different-secret", Expiration: time.Hour},
		nil, nil,
	)
	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "correct horse"})
	require.NoError(t, err)

	_, err = other.ValidateToken(res.AccessToken)
	require.Error(t, err)
}
