package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/treasuryops/tbo_backend/internal/core/ports/services"
	"github.com/treasuryops/tbo_backend/internal/dto"
	"github.com/treasuryops/tbo_backend/internal/middleware"
)

// dealHandler handles HTTP requests for the generic deal lifecycle.
type dealHandler struct {
	dealService     portssvc.DealSvcFacade
	defaultCurrency string
}

func newDealHandler(dealService portssvc.DealSvcFacade, defaultCurrency string) *dealHandler {
	return &dealHandler{dealService: dealService, defaultCurrency: defaultCurrency}
}

// registerDealRoutes registers routes for generic deals.
func registerDealRoutes(rg *gin.RouterGroup, dealService portssvc.DealSvcFacade, defaultCurrency string) {
	h := newDealHandler(dealService, defaultCurrency)

	deals := rg.Group("/deals")
	{
		deals.POST("", h.createDeal)
		deals.GET("", h.listDeals)
		deals.GET("/:dealNumber", h.getDeal)
		deals.PUT("/:dealNumber", h.updateDealFields)
		deals.PUT("/:dealNumber/status", h.updateDealStatus)
		deals.PUT("/:dealNumber/escalate", h.escalateDeal)
		deals.DELETE("/:dealNumber", h.deleteDeal)
	}
}

// createDeal numbers, limit-checks, persists and ledger-posts a new deal.
func (h *dealHandler) createDeal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.Currency == "" {
		req.Currency = h.defaultCurrency
	}

	p, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	deal, err := h.dealService.CreateDeal(c.Request.Context(), p, req)
	if err != nil {
		respondError(c, err, "Failed to create deal")
		return
	}

	logger.Info("Deal created", slog.String("deal_number", deal.DealNumber))
	c.JSON(http.StatusCreated, dto.ToDealResponse(deal))
}

// listDeals retrieves the most recently created deals.
func (h *dealHandler) listDeals(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	deals, err := h.dealService.ListRecentDeals(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "Failed to list deals")
		return
	}
	c.JSON(http.StatusOK, dto.ToDealResponses(deals))
}

// getDeal retrieves one deal by its deal number.
func (h *dealHandler) getDeal(c *gin.Context) {
	deal, err := h.dealService.GetDealByNumber(c.Request.Context(), c.Param("dealNumber"))
	if err != nil {
		respondError(c, err, "Failed to retrieve deal")
		return
	}
	c.JSON(http.StatusOK, dto.ToDealResponse(deal))
}

// updateDealFields edits the business fields of a deal.
func (h *dealHandler) updateDealFields(c *gin.Context) {
	var req dto.UpdateDealFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	p, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	deal, err := h.dealService.UpdateDealFields(c.Request.Context(), p, c.Param("dealNumber"), req)
	if err != nil {
		respondError(c, err, "Failed to update deal")
		return
	}
	c.JSON(http.StatusOK, dto.ToDealResponse(deal))
}

// updateDealStatus applies an approve/reject decision.
func (h *dealHandler) updateDealStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateDealStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	p, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	deal, err := h.dealService.UpdateDealStatus(c.Request.Context(), p, c.Param("dealNumber"), req)
	if err != nil {
		respondError(c, err, "Failed to update deal status")
		return
	}

	logger.Info("Deal status updated",
		slog.String("deal_number", deal.DealNumber),
		slog.String("status", string(deal.Status)),
		slog.String("approval_level", string(deal.CurrentApprovalLevel)))
	c.JSON(http.StatusOK, dto.ToDealResponse(deal))
}

// escalateDeal moves only the workflow position of a deal.
func (h *dealHandler) escalateDeal(c *gin.Context) {
	var req dto.EscalateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	p, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	deal, err := h.dealService.EscalateDeal(c.Request.Context(), p, c.Param("dealNumber"), req)
	if err != nil {
		respondError(c, err, "Failed to escalate deal")
		return
	}
	c.JSON(http.StatusOK, dto.ToDealResponse(deal))
}

// deleteDeal removes a non-terminal deal along with its ledger entries.
func (h *dealHandler) deleteDeal(c *gin.Context) {
	p, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.dealService.DeleteDeal(c.Request.Context(), p, c.Param("dealNumber")); err != nil {
		respondError(c, err, "Failed to delete deal")
		return
	}
	c.Status(http.StatusNoContent)
}
