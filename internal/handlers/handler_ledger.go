package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
	portssvc "github.com/treasuryops/tbo_backend/internal/core/ports/services"
	"github.com/treasuryops/tbo_backend/internal/dto"
)

// ledgerHandler handles HTTP requests over the general ledger.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ledgerService portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ledgerService}
}

// registerLedgerRoutes registers ledger and statement routes.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	ledger := rg.Group("/ledger")
	{
		ledger.GET("", h.generalLedger)
		ledger.GET("/deals/:dealNumber", h.entriesByDeal)
		ledger.GET("/pnl", h.profitAndLoss)
		ledger.GET("/balance-sheet", h.balanceSheet)
	}
}

// generalLedger lists ledger entries matching the query filters.
func (h *ledgerHandler) generalLedger(c *gin.Context) {
	var q dto.LedgerQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	entries, err := h.ledgerService.GetGeneralLedger(c.Request.Context(), domain.LedgerFilters{
		StartDate:   q.StartDate,
		EndDate:     q.EndDate,
		AccountCode: q.AccountCode,
		DealNumber:  q.DealNumber,
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
	if err != nil {
		respondError(c, err, "Failed to query general ledger")
		return
	}
	c.JSON(http.StatusOK, dto.ToLedgerEntryResponses(entries))
}

// entriesByDeal lists every ledger entry tied to one deal.
func (h *ledgerHandler) entriesByDeal(c *gin.Context) {
	entries, err := h.ledgerService.GetEntriesByDealNumber(c.Request.Context(), c.Param("dealNumber"))
	if err != nil {
		respondError(c, err, "Failed to query ledger entries")
		return
	}
	c.JSON(http.StatusOK, dto.ToLedgerEntryResponses(entries))
}

// profitAndLoss aggregates revenue and expense balances over a period.
func (h *ledgerHandler) profitAndLoss(c *gin.Context) {
	var q dto.PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	pnl, err := h.ledgerService.GetProfitAndLoss(c.Request.Context(), q.StartDate, q.EndDate)
	if err != nil {
		respondError(c, err, "Failed to build profit and loss statement")
		return
	}
	c.JSON(http.StatusOK, pnl)
}

// balanceSheet aggregates asset, liability and equity balances as of a date.
func (h *ledgerHandler) balanceSheet(c *gin.Context) {
	var q dto.AsOfQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	bs, err := h.ledgerService.GetBalanceSheet(c.Request.Context(), q.AsOfDate)
	if err != nil {
		respondError(c, err, "Failed to build balance sheet")
		return
	}
	c.JSON(http.StatusOK, bs)
}
