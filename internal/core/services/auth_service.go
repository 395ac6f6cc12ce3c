package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/treasuryops/tbo_backend/internal/apperrors"
	"github.com/treasuryops/tbo_backend/internal/core/domain"
	portsrepo "github.com/treasuryops/tbo_backend/internal/core/ports/repositories"
	portssvc "github.com/treasuryops/tbo_backend/internal/core/ports/services"
	"github.com/treasuryops/tbo_backend/internal/middleware"
	"github.com/treasuryops/tbo_backend/internal/utils"
)

// authService verifies operator credentials and issues HMAC-signed access
// tokens carrying the role claim.
type authService struct {
	userRepo  portsrepo.UserRepositoryFacade
	jwtSecret string
	jwtIssuer string
	jwtExpiry time.Duration
}

// NewAuthService creates a new auth service.
func NewAuthService(userRepo portsrepo.UserRepositoryFacade, jwtSecret, jwtIssuer string, jwtExpiry time.Duration) portssvc.AuthSvcFacade {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		jwtIssuer: jwtIssuer,
		jwtExpiry: jwtExpiry,
	}
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

// Login verifies credentials and returns a signed access token. Unknown user
// and wrong password are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, username, password string) (string, time.Time, *domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil || user == nil || !user.IsActive || !utils.CheckPasswordHash(password, user.PasswordHash) {
		logger.Warn("Login failed", "username", username)
		return "", time.Time{}, nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrForbidden)
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.jwtExpiry)
	claims := middleware.AccessClaims{
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			Issuer:    s.jwtIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	logger.Info("Login succeeded", "user_id", user.UserID, "role", string(user.Role))
	return token, expiresAt, user, nil
}

// ValidateToken parses and verifies an access token and returns its principal.
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*domain.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &middleware.AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrForbidden, err)
	}

	claims, ok := token.Claims.(*middleware.AccessClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: invalid token claims", apperrors.ErrForbidden)
	}
	return &domain.Principal{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     domain.Role(claims.Role),
	}, nil
}
