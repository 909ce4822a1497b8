package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/lumengrid/lumen_api/internal/middleware"
	"github.com/lumengrid/lumen_api/internal/service"
	"github.com/lumengrid/lumen_api/internal/utils"
)

// ExportHandler serves CSV order-sheet exports of priced selections.
type ExportHandler struct {
	exportService *service.ExportService
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportSelection handles GET /v1/selections/:id/export
// The payload is signed with the calling client's callback secret; the
// signature travels in the X-Signature response header.
func (h *ExportHandler) ExportSelection(c *gin.Context) {
	id, ok := selectionID(c)
	if !ok {
		return
	}

	secret := ""
	if client := middleware.GetClient(c); client != nil {
		secret = client.CallbackSecret
	}

	exp, err := h.exportService.ExportCSV(c.Request.Context(), id, secret)
	if err != nil {
		if err == utils.ErrSelectionNotFound {
			utils.Error(c, 404, "SELECTION_NOT_FOUND", "Selection not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to export selection")
		return
	}

	if exp.Signature != "" {
		c.Header("X-Signature", exp.Signature)
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exp.Filename))
	c.Data(200, exp.ContentType, exp.Data)
}
