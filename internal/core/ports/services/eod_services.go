package services

import (
	"context"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
)

// EodSvcFacade runs the end-of-day accrual batch.
type EodSvcFacade interface {
	// RunEndOfDay posts daily accrual entries for open money-market and GSec
	// deals, then advances the system day. Only one run may be in flight at a
	// time; a second concurrent call fails fast.
	RunEndOfDay(ctx context.Context, p domain.Principal) (*domain.EodResult, error)

	// GetSystemDay retrieves the current business date.
	GetSystemDay(ctx context.Context) (*domain.SystemDay, error)
}
