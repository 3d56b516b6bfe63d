package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/trust_desk_app/internal/core/ports/services"
	"github.com/SscSPs/trust_desk_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type dataHandler struct {
	dataService portssvc.DataService
}

func registerDataRoutes(rg *gin.RouterGroup, dataService portssvc.DataService) {
	h := &dataHandler{dataService: dataService}
	rg.POST("/reset", h.reset)
}

// reset godoc
// @Summary Reset demo data
// @Description Restores the ledger and the request queue to the seed state
// @Tags data
// @Produce  json
// @Success 200 {object} map[string]string
// @Failure 500 {object} map[string]string "Failed to reset data"
// @Router /reset [post]
func (h *dataHandler) reset(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	if err := h.dataService.Reset(c.Request.Context()); err != nil {
		respondError(c, logger, err, "Failed to reset data")
		return
	}

	logger.Info("Data reset to seed state")
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
