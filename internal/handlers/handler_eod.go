package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/treasuryops/tbo_backend/internal/core/ports/services"
	"github.com/treasuryops/tbo_backend/internal/middleware"
)

// eodHandler handles HTTP requests for the end-of-day batch and system day.
type eodHandler struct {
	eodService portssvc.EodSvcFacade
}

func newEodHandler(eodService portssvc.EodSvcFacade) *eodHandler {
	return &eodHandler{eodService: eodService}
}

// registerEodRoutes registers end-of-day routes.
func registerEodRoutes(rg *gin.RouterGroup, eodService portssvc.EodSvcFacade) {
	h := newEodHandler(eodService)

	rg.POST("/eod", h.runEndOfDay)
	rg.GET("/system-day", h.getSystemDay)
}

// runEndOfDay posts daily accruals for every open deal and advances the
// system day.
func (h *eodHandler) runEndOfDay(c *gin.Context) {
	p, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.eodService.RunEndOfDay(c.Request.Context(), p)
	if err != nil {
		respondError(c, err, "End-of-day run failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

// getSystemDay reports the current business date.
func (h *eodHandler) getSystemDay(c *gin.Context) {
	day, err := h.eodService.GetSystemDay(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to read system day")
		return
	}
	c.JSON(http.StatusOK, day)
}
