package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/treasuryops/tbo_backend/internal/core/ports/services"
	"github.com/treasuryops/tbo_backend/internal/dto"
	"github.com/treasuryops/tbo_backend/internal/middleware"
)

// couponHandler handles HTTP requests for security masters and coupon
// schedules.
type couponHandler struct {
	couponService portssvc.CouponSvcFacade
}

func newCouponHandler(couponService portssvc.CouponSvcFacade) *couponHandler {
	return &couponHandler{couponService: couponService}
}

// registerCouponRoutes registers ISIN and coupon schedule routes.
func registerCouponRoutes(rg *gin.RouterGroup, couponService portssvc.CouponSvcFacade) {
	h := newCouponHandler(couponService)

	isins := rg.Group("/isins")
	{
		isins.POST("", h.createIsin)
		isins.GET("/:isin", h.getIsin)
		isins.GET("/:isin/schedule", h.getSchedule)
		isins.GET("/:isin/coupon-dates", h.getCouponDates)
	}
}

// createIsin registers a security master and generates its coupon schedule.
func (h *couponHandler) createIsin(c *gin.Context) {
	var req dto.CreateIsinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	p, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	master, err := h.couponService.CreateIsin(c.Request.Context(), p, req)
	if err != nil {
		respondError(c, err, "Failed to register ISIN")
		return
	}
	c.JSON(http.StatusCreated, master)
}

// getIsin retrieves a security master.
func (h *couponHandler) getIsin(c *gin.Context) {
	master, err := h.couponService.GetIsin(c.Request.Context(), c.Param("isin"))
	if err != nil {
		respondError(c, err, "Failed to retrieve ISIN")
		return
	}
	c.JSON(http.StatusOK, master)
}

// getSchedule retrieves the full coupon schedule for an ISIN.
func (h *couponHandler) getSchedule(c *gin.Context) {
	schedule, err := h.couponService.GetSchedule(c.Request.Context(), c.Param("isin"))
	if err != nil {
		respondError(c, err, "Failed to retrieve coupon schedule")
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// getCouponDates returns the previous/next coupon dates around a value date.
// The value date defaults to today when not supplied.
func (h *couponHandler) getCouponDates(c *gin.Context) {
	isin := c.Param("isin")

	valueDate := time.Now().UTC()
	if raw := c.Query("valueDate"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "valueDate must be formatted as YYYY-MM-DD"})
			return
		}
		valueDate = parsed
	}

	dates, err := h.couponService.GetCouponDates(c.Request.Context(), isin, valueDate)
	if err != nil {
		respondError(c, err, "Failed to resolve coupon dates")
		return
	}
	c.JSON(http.StatusOK, dto.CouponDatesResponse{ISIN: isin, Previous: dates.Previous, Next: dates.Next})
}
