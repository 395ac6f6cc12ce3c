package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
)

// LedgerQuery narrows general ledger listings.
type LedgerQuery struct {
	StartDate   *time.Time `form:"startDate" time_format:"2006-01-02"`
	EndDate     *time.Time `form:"endDate" time_format:"2006-01-02"`
	AccountCode string     `form:"accountCode"`
	DealNumber  string     `form:"dealNumber"`
	Limit       int        `form:"limit"`
	Offset      int        `form:"offset"`
}

// LedgerEntryResponse is the external representation of one ledger entry.
type LedgerEntryResponse struct {
	EntryID      string          `json:"entryID"`
	DealNumber   string          `json:"dealNumber"`
	AccountCode  string          `json:"accountCode"`
	EntryDate    time.Time       `json:"entryDate"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Currency     string          `json:"currency"`
	Description  string          `json:"description"`
}

// ToLedgerEntryResponses maps domain ledger entries to DTOs.
func ToLedgerEntryResponses(entries []domain.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = LedgerEntryResponse{
			EntryID:      e.EntryID,
			DealNumber:   e.DealNumber,
			AccountCode:  e.AccountCode,
			EntryDate:    e.EntryDate,
			DebitAmount:  e.DebitAmount,
			CreditAmount: e.CreditAmount,
			Currency:     e.Currency,
			Description:  e.Description,
		}
	}
	return out
}

// PeriodQuery bounds a profit-and-loss statement.
type PeriodQuery struct {
	StartDate time.Time `form:"startDate" time_format:"2006-01-02" binding:"required"`
	EndDate   time.Time `form:"endDate" time_format:"2006-01-02" binding:"required"`
}

// AsOfQuery bounds a balance sheet.
type AsOfQuery struct {
	AsOfDate time.Time `form:"asOfDate" time_format:"2006-01-02" binding:"required"`
}
