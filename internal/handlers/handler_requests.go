package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/trust_desk_app/internal/core/ports/services"
	"github.com/SscSPs/trust_desk_app/internal/dto"
	"github.com/SscSPs/trust_desk_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// requestHandler handles HTTP requests related to distribution requests and
// the officer decisions taken on them.
type requestHandler struct {
	requestService  portssvc.RequestSvcFacade
	approvalService portssvc.ApprovalSvcFacade
}

// newRequestHandler creates a new requestHandler.
func newRequestHandler(rs portssvc.RequestSvcFacade, as portssvc.ApprovalSvcFacade) *requestHandler {
	return &requestHandler{
		requestService:  rs,
		approvalService: as,
	}
}

// registerRequestRoutes registers routes related to requests.
func registerRequestRoutes(rg *gin.RouterGroup, requestService portssvc.RequestSvcFacade, approvalService portssvc.ApprovalSvcFacade) {
	h := newRequestHandler(requestService, approvalService)

	requests := rg.Group("/requests")
	{
		requests.GET("", h.getSummary)
		requests.POST("", h.submitRequest)
		requests.POST("/batch/approve", h.batchApprove)
		requests.POST("/batch/deny", h.batchDeny)
		requests.GET("/:id", h.getRequest)
		requests.PATCH("/:id/override", h.applyOverride)
		requests.POST("/:id/approve", h.approve)
		requests.POST("/:id/deny", h.deny)
	}
}

// getSummary godoc
// @Summary Get the request queue
// @Description Returns every request with the pending count and the pending exposure
// @Tags requests
// @Produce  json
// @Success 200 {object} domain.RequestsSummary
// @Failure 500 {object} map[string]string "Failed to load requests"
// @Router /requests [get]
func (h *requestHandler) getSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	summary, err := h.requestService.Summary(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to load requests")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// submitRequest godoc
// @Summary Submit a distribution request
// @Description Records a new pending request from a beneficiary's free text
// @Tags requests
// @Accept  json
// @Produce  json
// @Param   request body dto.SubmitRequestRequest true "Beneficiary and request text"
// @Success 201 {object} domain.TrustRequest
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 500 {object} map[string]string "Failed to submit request"
// @Router /requests [post]
func (h *requestHandler) submitRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SubmitRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "SubmitRequest", err)
		return
	}

	logger.Info("Received request submission", slog.String("beneficiary", req.Beneficiary))

	created, err := h.requestService.SubmitRequest(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "Failed to submit request")
		return
	}

	logger.Info("Request submitted", slog.String("request_id", created.ID))
	c.JSON(http.StatusCreated, created)
}

// getRequest godoc
// @Summary Get a request by ID
// @Description Retrieves one request with its effective flags and severity
// @Tags requests
// @Produce  json
// @Param   id path string true "Request ID"
// @Success 200 {object} dto.RequestResponse
// @Failure 404 {object} map[string]string "Request not found"
// @Failure 500 {object} map[string]string "Failed to retrieve request"
// @Router /requests/{id} [get]
func (h *requestHandler) getRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("request_id", c.Param("id")))

	resp, err := h.requestService.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve request")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// applyOverride godoc
// @Summary Override parsed fields
// @Description Sets officer values for amount, category, urgency or notes on a pending request
// @Tags requests
// @Accept  json
// @Produce  json
// @Param   id path string true "Request ID"
// @Param   override body dto.OverrideRequest true "Fields to override"
// @Success 200 {object} domain.TrustRequest
// @Failure 400 {object} map[string]string "Invalid override values"
// @Failure 404 {object} map[string]string "Request not found"
// @Failure 409 {object} map[string]string "Request already processed"
// @Failure 500 {object} map[string]string "Failed to apply override"
// @Router /requests/{id}/override [patch]
func (h *requestHandler) applyOverride(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("request_id", c.Param("id")))

	var req dto.OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "ApplyOverride", err)
		return
	}

	updated, err := h.approvalService.ApplyOverride(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, logger, err, "Failed to apply override")
		return
	}

	logger.Info("Officer override applied")
	c.JSON(http.StatusOK, updated)
}

// approve godoc
// @Summary Approve a request
// @Description Debits the ledger and marks the request approved in one step. Policy, cap and balance checks run first.
// @Tags requests
// @Accept  json
// @Produce  json
// @Param   id path string true "Request ID"
// @Param   approval body dto.ApproveRequest false "Notes and optional approved amount"
// @Success 200 {object} dto.ApproveResponse
// @Failure 400 {object} map[string]string "Request has no usable amount"
// @Failure 404 {object} map[string]string "Request not found"
// @Failure 409 {object} map[string]string "Request already processed"
// @Failure 422 {object} map[string]string "Blocked by policy, monthly cap or balance"
// @Failure 500 {object} map[string]string "Failed to approve request"
// @Router /requests/{id}/approve [post]
func (h *requestHandler) approve(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("request_id", c.Param("id")))

	var req dto.ApproveRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondBindError(c, logger, "Approve", err)
		return
	}

	request, entry, err := h.approvalService.Approve(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, logger, err, "Failed to approve request")
		return
	}

	logger.Info("Request approved", slog.String("entry_id", entry.ID), slog.String("amount", entry.Amount.String()))
	c.JSON(http.StatusOK, dto.ApproveResponse{Request: *request, LedgerEntry: *entry})
}

// deny godoc
// @Summary Deny a request
// @Description Marks the request denied. The ledger is not touched.
// @Tags requests
// @Accept  json
// @Produce  json
// @Param   id path string true "Request ID"
// @Param   denial body dto.DenyRequest false "Denial notes"
// @Success 200 {object} domain.TrustRequest
// @Failure 404 {object} map[string]string "Request not found"
// @Failure 409 {object} map[string]string "Request already processed"
// @Failure 500 {object} map[string]string "Failed to deny request"
// @Router /requests/{id}/deny [post]
func (h *requestHandler) deny(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("request_id", c.Param("id")))

	var req dto.DenyRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondBindError(c, logger, "Deny", err)
		return
	}

	request, err := h.approvalService.Deny(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, logger, err, "Failed to deny request")
		return
	}

	logger.Info("Request denied")
	c.JSON(http.StatusOK, request)
}

// batchApprove godoc
// @Summary Approve several requests
// @Description Approves each listed request independently; failures do not stop the batch
// @Tags requests
// @Accept  json
// @Produce  json
// @Param   batch body dto.BatchRequest true "Request IDs"
// @Success 200 {object} domain.BatchResult
// @Failure 400 {object} map[string]string "Invalid input format"
// @Router /requests/batch/approve [post]
func (h *requestHandler) batchApprove(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "BatchApprove", err)
		return
	}

	result := h.approvalService.BatchApprove(c.Request.Context(), req)
	logger.Info("Batch approve finished", slog.Int("succeeded", result.Succeeded), slog.Int("failed", result.Failed))
	c.JSON(http.StatusOK, result)
}

// batchDeny godoc
// @Summary Deny several requests
// @Description Denies each listed request independently; failures do not stop the batch
// @Tags requests
// @Accept  json
// @Produce  json
// @Param   batch body dto.BatchRequest true "Request IDs"
// @Success 200 {object} domain.BatchResult
// @Failure 400 {object} map[string]string "Invalid input format"
// @Router /requests/batch/deny [post]
func (h *requestHandler) batchDeny(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "BatchDeny", err)
		return
	}

	result := h.approvalService.BatchDeny(c.Request.Context(), req)
	logger.Info("Batch deny finished", slog.Int("succeeded", result.Succeeded), slog.Int("failed", result.Failed))
	c.JSON(http.StatusOK, result)
}
