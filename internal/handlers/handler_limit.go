package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/treasuryops/tbo_backend/internal/core/ports/services"
	"github.com/treasuryops/tbo_backend/internal/dto"
)

// limitHandler handles HTTP requests for counterparty exposure status.
type limitHandler struct {
	limitService portssvc.LimitSvcFacade
}

func newLimitHandler(limitService portssvc.LimitSvcFacade) *limitHandler {
	return &limitHandler{limitService: limitService}
}

// registerLimitRoutes registers exposure-limit routes.
func registerLimitRoutes(rg *gin.RouterGroup, limitService portssvc.LimitSvcFacade) {
	h := newLimitHandler(limitService)

	limits := rg.Group("/limits")
	{
		limits.GET("/status", h.limitStatus)
	}
}

// limitStatus reports current exposure against configured ceilings.
func (h *limitHandler) limitStatus(c *gin.Context) {
	var q dto.LimitStatusQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	decision, err := h.limitService.GetLimitStatus(c.Request.Context(), q.CounterpartyID, q.CounterpartyType, q.ProductType, q.Currency)
	if err != nil {
		respondError(c, err, "Failed to query limit status")
		return
	}

	c.JSON(http.StatusOK, dto.LimitStatusResponse{
		CounterpartyID:         q.CounterpartyID,
		CounterpartyType:       q.CounterpartyType,
		ProductType:            q.ProductType,
		Currency:               q.Currency,
		ProductLimit:           decision.ProductLimit,
		OverallLimit:           decision.OverallLimit,
		CurrentProductExposure: decision.CurrentProductExposure,
		CurrentOverallExposure: decision.CurrentOverallExposure,
	})
}
