package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/treasuryops/tbo_backend/internal/apperrors"
	portsrepo "github.com/treasuryops/tbo_backend/internal/core/ports/repositories"
	portssvc "github.com/treasuryops/tbo_backend/internal/core/ports/services"
)

// maxNumberAttempts bounds the random-suffix retry loop. With 10000 possible
// suffixes per day the loop only exhausts under pathological contention.
const maxNumberAttempts = 10

const dealDateLayout = "20060102"

// numberingService issues deal numbers inside the caller's transaction.
type numberingService struct {
	dealRepo portsrepo.DealNumberingSupport
}

// NewNumberingService creates a new numbering service.
func NewNumberingService(dealRepo portsrepo.DealNumberingSupport) portssvc.NumberingSvcFacade {
	return &numberingService{dealRepo: dealRepo}
}

var _ portssvc.NumberingSvcFacade = (*numberingService)(nil)

// NextDealNumberInTx issues a {YYYYMMDD}{rand4} number, retrying on collision.
func (s *numberingService) NextDealNumberInTx(ctx context.Context, tx pgx.Tx, tradeDate time.Time) (string, error) {
	prefix := tradeDate.Format(dealDateLayout)

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		suffix, err := randomDigits4()
		if err != nil {
			return "", fmt.Errorf("failed to generate deal number suffix: %w", err)
		}
		candidate := prefix + suffix

		exists, err := s.dealRepo.DealNumberExistsInTx(ctx, tx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check deal number uniqueness: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", apperrors.ErrNumberGenerationExhausted
}

// NextMoneyMarketNumberInTx issues a {YYYYMMDD}{product}{seq4} number where seq
// is one past the highest sequence already issued for the date and product.
func (s *numberingService) NextMoneyMarketNumberInTx(ctx context.Context, tx pgx.Tx, tradeDate time.Time, productCode string) (string, error) {
	if productCode == "" {
		return "", fmt.Errorf("%w: product code is required for money market numbering", apperrors.ErrValidation)
	}

	maxSeq, err := s.dealRepo.MaxMoneyMarketSequenceInTx(ctx, tx, tradeDate, productCode)
	if err != nil {
		return "", fmt.Errorf("failed to read money market sequence: %w", err)
	}

	next := maxSeq + 1
	if next > 9999 {
		return "", fmt.Errorf("%w: money market sequence for %s/%s is full", apperrors.ErrNumberGenerationExhausted, tradeDate.Format(dealDateLayout), productCode)
	}

	return fmt.Sprintf("%s%s%04d", tradeDate.Format(dealDateLayout), productCode, next), nil
}

func randomDigits4() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
