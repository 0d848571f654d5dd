package api

import (
	"alcyxob/weekly-routines/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ExportHandler writes schedule snapshots to object storage.
type ExportHandler struct {
	exportService service.ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// CreateExport godoc
// @Summary Export routines and week as JSON
// @Description Uploads a snapshot and returns a presigned download URL.
// @Tags Exports
// @Produce json
// @Security BearerAuth
// @Success 201 {object} service.ExportResult
// @Failure 503 {object} gin.H "Export storage not configured or unavailable"
// @Router /exports [post]
func (h *ExportHandler) CreateExport(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}
	result, err := h.exportService.ExportSchedule(c.Request.Context(), ownerID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
