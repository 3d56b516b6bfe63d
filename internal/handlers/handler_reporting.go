package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/trust_desk_app/internal/core/ports/services"
	"github.com/SscSPs/trust_desk_app/internal/dto"
	"github.com/SscSPs/trust_desk_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler serves the dashboard's read-only views.
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{reportingService: rs}
}

func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports")
	{
		reports.GET("/balance-series", h.getBalanceSeries)
		reports.GET("/category-breakdown", h.getCategoryBreakdown)
		reports.GET("/monthly-trend", h.getMonthlyTrend)
		reports.GET("/beneficiaries/:name", h.getBeneficiaryProfile)
	}
}

// getBalanceSeries godoc
// @Summary Running balance
// @Description Returns the balance after each ledger entry in chronological order
// @Tags reports
// @Produce  json
// @Success 200 {object} dto.BalanceSeriesResponse
// @Failure 500 {object} map[string]string "Failed to build balance series"
// @Router /reports/balance-series [get]
func (h *reportingHandler) getBalanceSeries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	points, err := h.reportingService.BalanceSeries(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to build balance series")
		return
	}
	c.JSON(http.StatusOK, dto.BalanceSeriesResponse{Points: points})
}

// getCategoryBreakdown godoc
// @Summary Distributions by category
// @Description Returns approved distribution totals per category, largest first
// @Tags reports
// @Produce  json
// @Success 200 {object} dto.CategoryBreakdownResponse
// @Failure 500 {object} map[string]string "Failed to build category breakdown"
// @Router /reports/category-breakdown [get]
func (h *reportingHandler) getCategoryBreakdown(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	categories, err := h.reportingService.CategoryBreakdown(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to build category breakdown")
		return
	}
	c.JSON(http.StatusOK, dto.CategoryBreakdownResponse{Categories: categories})
}

// getMonthlyTrend godoc
// @Summary Monthly outflow
// @Description Returns debit totals per calendar month, oldest first
// @Tags reports
// @Produce  json
// @Success 200 {object} dto.MonthlyTrendResponse
// @Failure 500 {object} map[string]string "Failed to build monthly trend"
// @Router /reports/monthly-trend [get]
func (h *reportingHandler) getMonthlyTrend(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	months, err := h.reportingService.MonthlyTrend(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to build monthly trend")
		return
	}
	c.JSON(http.StatusOK, dto.MonthlyTrendResponse{Months: months})
}

// getBeneficiaryProfile godoc
// @Summary Beneficiary profile
// @Description Summarizes one beneficiary's distributions and request history
// @Tags reports
// @Produce  json
// @Param   name path string true "Beneficiary name"
// @Success 200 {object} domain.BeneficiaryProfile
// @Failure 400 {object} map[string]string "Blank beneficiary name"
// @Failure 500 {object} map[string]string "Failed to build beneficiary profile"
// @Router /reports/beneficiaries/{name} [get]
func (h *reportingHandler) getBeneficiaryProfile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	profile, err := h.reportingService.BeneficiaryProfile(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, logger, err, "Failed to build beneficiary profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}
