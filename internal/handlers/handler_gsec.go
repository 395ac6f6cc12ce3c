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

// gsecHandler handles HTTP requests for GSec and money-market deals.
type gsecHandler struct {
	gsecService     portssvc.GsecSvc
	mmService       portssvc.MoneyMarketSvc
	defaultCurrency string
}

func newGsecHandler(gsecService portssvc.GsecSvc, mmService portssvc.MoneyMarketSvc, defaultCurrency string) *gsecHandler {
	return &gsecHandler{gsecService: gsecService, mmService: mmService, defaultCurrency: defaultCurrency}
}

// registerGsecRoutes registers routes for securities and money-market deals.
func registerGsecRoutes(rg *gin.RouterGroup, gsecService portssvc.GsecSvc, mmService portssvc.MoneyMarketSvc, defaultCurrency string) {
	h := newGsecHandler(gsecService, mmService, defaultCurrency)

	gsec := rg.Group("/gsec")
	{
		gsec.POST("", h.createGsec)
		gsec.GET("", h.listGsec)
		gsec.GET("/:dealNumber", h.getGsec)
		gsec.PUT("/:dealNumber/status", h.updateGsecStatus)
	}

	mm := rg.Group("/money-market")
	{
		mm.POST("", h.createMoneyMarket)
		mm.GET("/:dealNumber", h.getMoneyMarket)
	}
}

// createGsec prices, numbers, limit-checks and persists a GSec deal.
func (h *gsecHandler) createGsec(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateGsecRequest
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

	deal, err := h.gsecService.CreateGsecDeal(c.Request.Context(), p, req)
	if err != nil {
		respondError(c, err, "Failed to create GSec deal")
		return
	}

	logger.Info("GSec deal created", slog.String("deal_number", deal.DealNumber), slog.String("isin", deal.ISIN))
	c.JSON(http.StatusCreated, dto.ToGsecResponse(deal))
}

// listGsec retrieves the most recently created GSec deals.
func (h *gsecHandler) listGsec(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	deals, err := h.gsecService.ListRecentGsec(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "Failed to list GSec deals")
		return
	}

	out := make([]dto.GsecResponse, len(deals))
	for i := range deals {
		out[i] = dto.ToGsecResponse(&deals[i])
	}
	c.JSON(http.StatusOK, out)
}

// getGsec retrieves one GSec deal by its deal number.
func (h *gsecHandler) getGsec(c *gin.Context) {
	deal, err := h.gsecService.GetGsecByNumber(c.Request.Context(), c.Param("dealNumber"))
	if err != nil {
		respondError(c, err, "Failed to retrieve GSec deal")
		return
	}
	c.JSON(http.StatusOK, dto.ToGsecResponse(deal))
}

// updateGsecStatus applies an approve/reject decision to a GSec deal.
func (h *gsecHandler) updateGsecStatus(c *gin.Context) {
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

	deal, err := h.gsecService.UpdateGsecStatus(c.Request.Context(), p, c.Param("dealNumber"), req)
	if err != nil {
		respondError(c, err, "Failed to update GSec deal status")
		return
	}
	c.JSON(http.StatusOK, dto.ToGsecResponse(deal))
}

// createMoneyMarket numbers and persists a money-market deal.
func (h *gsecHandler) createMoneyMarket(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateMoneyMarketRequest
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

	deal, err := h.mmService.CreateMoneyMarketDeal(c.Request.Context(), p, req)
	if err != nil {
		respondError(c, err, "Failed to create money market deal")
		return
	}

	logger.Info("Money market deal created", slog.String("deal_number", deal.DealNumber))
	c.JSON(http.StatusCreated, deal)
}

// getMoneyMarket retrieves one money-market deal by its deal number.
func (h *gsecHandler) getMoneyMarket(c *gin.Context) {
	deal, err := h.mmService.GetMoneyMarketByNumber(c.Request.Context(), c.Param("dealNumber"))
	if err != nil {
		respondError(c, err, "Failed to retrieve money market deal")
		return
	}
	c.JSON(http.StatusOK, deal)
}
