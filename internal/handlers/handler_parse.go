package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/trust_desk_app/internal/core/ports/services"
	"github.com/SscSPs/trust_desk_app/internal/dto"
	"github.com/SscSPs/trust_desk_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type parseHandler struct {
	parseService portssvc.ParseSvc
}

func newParseHandler(ps portssvc.ParseSvc) *parseHandler {
	return &parseHandler{parseService: ps}
}

func registerParseRoutes(rg *gin.RouterGroup, parseService portssvc.ParseSvc) {
	h := newParseHandler(parseService)

	parse := rg.Group("/parse")
	{
		parse.POST("", h.parse)
		parse.POST("/pending", h.parsePending)
	}
}

// parse godoc
// @Summary Parse free-text request
// @Description Extracts amount, category and urgency from free text and evaluates them against trust policy. When request_id is given the result is stored on that request.
// @Tags parse
// @Accept  json
// @Produce  json
// @Param   parse body dto.ParseRequest true "Text to parse"
// @Success 200 {object} domain.ParseOutcome
// @Failure 400 {object} map[string]string "Empty text or beneficiary"
// @Failure 404 {object} map[string]string "Request not found"
// @Failure 409 {object} map[string]string "Request already processed"
// @Failure 502 {object} map[string]string "Extraction service failed"
// @Router /parse [post]
func (h *parseHandler) parse(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "Parse", err)
		return
	}
	if req.RequestID != nil {
		logger = logger.With(slog.String("request_id", *req.RequestID))
	}

	outcome, err := h.parseService.Parse(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "Failed to parse request")
		return
	}

	logger.Info("Request parsed", slog.String("category", string(outcome.Parsed.Category)), slog.String("severity", string(outcome.Severity)))
	c.JSON(http.StatusOK, outcome)
}

// parsePending godoc
// @Summary Parse all pending requests
// @Description Parses every pending request that has not been parsed yet
// @Tags parse
// @Produce  json
// @Success 200 {object} domain.BatchResult
// @Failure 500 {object} map[string]string "Failed to parse pending requests"
// @Router /parse/pending [post]
func (h *parseHandler) parsePending(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	result, err := h.parseService.ParseAllPending(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to parse pending requests")
		return
	}

	logger.Info("Pending requests parsed", slog.Int("succeeded", result.Succeeded), slog.Int("failed", result.Failed))
	c.JSON(http.StatusOK, result)
}
