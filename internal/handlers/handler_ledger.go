package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/trust_desk_app/internal/core/ports/services"
	"github.com/SscSPs/trust_desk_app/internal/dto"
	"github.com/SscSPs/trust_desk_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests related to the trust ledger.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{
		ledgerService: ls,
	}
}

// registerLedgerRoutes registers routes related to the ledger.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	ledger := rg.Group("/ledger")
	{
		ledger.GET("", h.getSummary)
		ledger.POST("", h.appendEntry)
		ledger.GET("/entries", h.listEntries)
	}
}

// getSummary godoc
// @Summary Get the ledger summary
// @Description Returns every entry in chronological order with credit and debit totals and the current balance
// @Tags ledger
// @Produce  json
// @Success 200 {object} domain.LedgerSummary
// @Failure 500 {object} map[string]string "Failed to load ledger"
// @Router /ledger [get]
func (h *ledgerHandler) getSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	summary, err := h.ledgerService.Summary(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to load ledger")
		return
	}

	logger.Debug("Ledger summary served", slog.Int("entries", len(summary.Entries)))
	c.JSON(http.StatusOK, summary)
}

// listEntries godoc
// @Summary List ledger entries
// @Description Pages ledger entries newest first using an opaque continuation token
// @Tags ledger
// @Produce  json
// @Param   limit query int false "Page size (1-100, default 20)"
// @Param   nextToken query string false "Continuation token from a previous page"
// @Success 200 {object} dto.ListLedgerEntriesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list ledger entries"
// @Router /ledger/entries [get]
func (h *ledgerHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListLedgerEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + describeBindError(err)})
		return
	}

	resp, err := h.ledgerService.ListEntries(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list ledger entries")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// appendEntry godoc
// @Summary Append a manual ledger entry
// @Description Records a credit or debit that is not tied to a request
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   entry body dto.CreateLedgerEntryRequest true "Entry details"
// @Success 201 {object} dto.LedgerEntryResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 500 {object} map[string]string "Failed to append ledger entry"
// @Router /ledger [post]
func (h *ledgerHandler) appendEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateLedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "AppendEntry", err)
		return
	}

	logger.Info("Received request to append ledger entry", slog.String("type", string(req.Type)), slog.String("amount", req.Amount.String()))

	entry, err := h.ledgerService.Append(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "Failed to append ledger entry")
		return
	}

	logger.Info("Ledger entry appended", slog.String("entry_id", entry.ID))
	c.JSON(http.StatusCreated, dto.LedgerEntryResponse{Entry: *entry})
}
