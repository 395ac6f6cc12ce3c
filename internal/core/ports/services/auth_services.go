package services

import (
	"context"
	"time"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
)

// AuthSvcFacade authenticates operators and issues access tokens.
type AuthSvcFacade interface {
	// Login verifies credentials and returns a signed access token with its
	// expiry.
	Login(ctx context.Context, username, password string) (string, time.Time, *domain.User, error)

	// ValidateToken parses and verifies an access token, returning the
	// principal it carries.
	ValidateToken(ctx context.Context, token string) (*domain.Principal, error)
}
