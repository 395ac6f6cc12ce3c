package repositories

import (
	"context"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
)

// UserRepositoryFacade defines persistence for operator accounts. User
// administration is handled outside this service; only lookup is needed here.
type UserRepositoryFacade interface {
	// FindUserByUsername retrieves an active user by username.
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindUserByID retrieves a user by its identifier.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
}
