package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/treasuryops/tbo_backend/internal/apperrors"
	"github.com/treasuryops/tbo_backend/internal/core/domain"
	portssvc "github.com/treasuryops/tbo_backend/internal/core/ports/services"
	"github.com/treasuryops/tbo_backend/internal/core/services"
	"github.com/treasuryops/tbo_backend/internal/middleware"
	"github.com/treasuryops/tbo_backend/internal/utils"
)

const testJwtSecret = "test-secret"

func newAuthService(userRepo *MockUserRepository) portssvc.AuthSvcFacade {
	return services.NewAuthService(userRepo, testJwtSecret, "tbo-backend", time.Hour)
}

func activeUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	return &domain.User{
		UserID:       "u-1",
		Username:     "maker1",
		PasswordHash: hash,
		Role:         domain.RoleFrontOffice,
		IsActive:     true,
	}
}

func TestLogin_IssuesTokenWithRoleClaim(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newAuthService(userRepo)

	userRepo.On("FindUserByUsername", mock.Anything, "maker1").Return(activeUser(t, "s3cret"), nil).Once()

	token, expiresAt, user, err := svc.Login(context.Background(), "maker1", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.UserID)
	assert.True(t, expiresAt.After(time.Now()))

	claims := &middleware.AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testJwtSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "maker1", claims.Username)
	assert.Equal(t, string(domain.RoleFrontOffice), claims.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newAuthService(userRepo)

	userRepo.On("FindUserByUsername", mock.Anything, "maker1").Return(activeUser(t, "s3cret"), nil).Once()

	_, _, _, err := svc.Login(context.Background(), "maker1", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestLogin_UnknownUserLooksLikeWrongPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newAuthService(userRepo)

	userRepo.On("FindUserByUsername", mock.Anything, "ghost").Return(nil, apperrors.NewNotFoundError("no such user")).Once()

	_, _, _, err := svc.Login(context.Background(), "ghost", "s3cret")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.ErrorContains(t, err, "invalid credentials")
}

func TestLogin_InactiveUserRejected(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newAuthService(userRepo)

	user := activeUser(t, "s3cret")
	user.IsActive = false
	userRepo.On("FindUserByUsername", mock.Anything, "maker1").Return(user, nil).Once()

	_, _, _, err := svc.Login(context.Background(), "maker1", "s3cret")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestValidateToken_Roundtrip(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newAuthService(userRepo)

	userRepo.On("FindUserByUsername", mock.Anything, "maker1").Return(activeUser(t, "s3cret"), nil).Once()

	token, _, _, err := svc.Login(context.Background(), "maker1", "s3cret")
	require.NoError(t, err)

	principal, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", principal.UserID)
	assert.Equal(t, domain.RoleFrontOffice, principal.Role)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	userRepo := new(MockUserRepository)
	other := services.NewAuthService(userRepo, "other-secret", "tbo-backend", time.Hour)
	svc := newAuthService(userRepo)

	userRepo.On("FindUserByUsername", mock.Anything, "maker1").Return(activeUser(t, "s3cret"), nil).Once()

	token, _, _, err := svc.Login(context.Background(), "maker1", "s3cret")
	require.NoError(t, err)

	_, err = other.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newAuthService(new(MockUserRepository))
	_, err := svc.ValidateToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
