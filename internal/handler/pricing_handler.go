package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/lumengrid/lumen_api/internal/service"
	"github.com/lumengrid/lumen_api/internal/utils"
)

// PricingHandler exposes ad-hoc quoting against the active promotion.
type PricingHandler struct {
	selectionService *service.SelectionService
}

// NewPricingHandler constructs a PricingHandler.
func NewPricingHandler(selectionService *service.SelectionService) *PricingHandler {
	return &PricingHandler{selectionService: selectionService}
}

// Quote handles POST /v1/pricing/quote
// Prices the posted items without persisting anything. Used by frontends to
// preview what-if baskets.
func (h *PricingHandler) Quote(c *gin.Context) {
	var req struct {
		Vendor string              `json:"vendor" binding:"required"`
		Items  []service.ItemInput `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "vendor and items are required")
		return
	}

	p, calc, err := h.selectionService.Quote(req.Vendor, req.Items)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to compute quote")
		return
	}
	if p == nil {
		utils.Error(c, 404, "NO_ACTIVE_PROMOTION", "No promotion is currently active for this vendor")
		return
	}

	utils.Success(c, 200, "Quote computed", gin.H{
		"promotion":   p,
		"calculation": calc,
	})
}
