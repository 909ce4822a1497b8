package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lumengrid/lumen_api/internal/repository"
	"github.com/lumengrid/lumen_api/internal/service"
	"github.com/lumengrid/lumen_api/internal/utils"
)

// SelectionHandler handles selection HTTP endpoints.
type SelectionHandler struct {
	selectionService *service.SelectionService
}

// NewSelectionHandler constructs a SelectionHandler.
func NewSelectionHandler(selectionService *service.SelectionService) *SelectionHandler {
	return &SelectionHandler{selectionService: selectionService}
}

// CreateSelection handles POST /v1/selections
func (h *SelectionHandler) CreateSelection(c *gin.Context) {
	var req struct {
		CustomerID int    `json:"customerId" binding:"required"`
		Vendor     string `json:"vendor" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "customerId and vendor are required")
		return
	}

	sel, err := h.selectionService.Create(req.CustomerID, req.Vendor)
	if err != nil {
		if err == utils.ErrCustomerNotFound {
			utils.Error(c, 404, "CUSTOMER_NOT_FOUND", "Customer not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to create selection")
		return
	}

	utils.Success(c, 201, "Selection created", sel)
}

// GetSelection handles GET /v1/selections/:id
func (h *SelectionHandler) GetSelection(c *gin.Context) {
	id, ok := selectionID(c)
	if !ok {
		return
	}

	sel, err := h.selectionService.Get(id)
	if err != nil {
		if err == utils.ErrSelectionNotFound {
			utils.Error(c, 404, "SELECTION_NOT_FOUND", "Selection not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve selection")
		return
	}

	utils.Success(c, 200, "Selection retrieved", sel)
}

// UpsertItem handles PUT /v1/selections/:id/items
func (h *SelectionHandler) UpsertItem(c *gin.Context) {
	id, ok := selectionID(c)
	if !ok {
		return
	}

	var input service.ItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid item payload")
		return
	}

	priced, err := h.selectionService.UpsertItem(c.Request.Context(), id, &input)
	if err != nil {
		h.mutationError(c, err)
		return
	}

	utils.Success(c, 200, "Item saved", priced)
}

// RemoveItem handles DELETE /v1/selections/:id/items/:sku
func (h *SelectionHandler) RemoveItem(c *gin.Context) {
	id, ok := selectionID(c)
	if !ok {
		return
	}
	sku := c.Param("sku")

	priced, err := h.selectionService.RemoveItem(c.Request.Context(), id, sku)
	if err != nil {
		if err == utils.ErrItemNotFound {
			utils.Error(c, 404, "ITEM_NOT_FOUND", "SKU not present in selection")
			return
		}
		h.mutationError(c, err)
		return
	}

	utils.Success(c, 200, "Item removed", priced)
}

// GetPricing handles GET /v1/selections/:id/pricing
func (h *SelectionHandler) GetPricing(c *gin.Context) {
	id, ok := selectionID(c)
	if !ok {
		return
	}

	priced, err := h.selectionService.Price(c.Request.Context(), id)
	if err != nil {
		if err == utils.ErrSelectionNotFound {
			utils.Error(c, 404, "SELECTION_NOT_FOUND", "Selection not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to price selection")
		return
	}

	utils.Success(c, 200, "Selection priced", priced)
}

// SubmitSelection handles POST /v1/selections/:id/submit
func (h *SelectionHandler) SubmitSelection(c *gin.Context) {
	id, ok := selectionID(c)
	if !ok {
		return
	}

	priced, err := h.selectionService.Submit(c.Request.Context(), id)
	if err != nil {
		h.mutationError(c, err)
		return
	}

	utils.Success(c, 200, "Selection submitted", priced)
}

// ListSelections handles GET /v1/admin/selections
func (h *SelectionHandler) ListSelections(c *gin.Context) {
	filter := &repository.SelectionFilter{
		Vendor: c.Query("vendor"),
		Status: c.Query("status"),
		Page:   parseIntQuery(c, "page", 1),
		Limit:  parseIntQuery(c, "limit", 50),
	}
	if raw := c.Query("customerId"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filter.CustomerID = n
		}
	}

	selections, total, err := h.selectionService.List(filter)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve selections")
		return
	}

	utils.SuccessWithPagination(c, 200, "Selections retrieved", selections, filter.Page, filter.Limit, total)
}

// ArchiveSelection handles POST /v1/admin/selections/:id/archive
func (h *SelectionHandler) ArchiveSelection(c *gin.Context) {
	id, ok := selectionID(c)
	if !ok {
		return
	}

	if err := h.selectionService.Archive(c.Request.Context(), id); err != nil {
		if err == utils.ErrSelectionNotFound {
			utils.Error(c, 404, "SELECTION_NOT_FOUND", "Selection not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to archive selection")
		return
	}

	utils.Success(c, 200, "Selection archived", gin.H{"id": id})
}

func (h *SelectionHandler) mutationError(c *gin.Context, err error) {
	switch err {
	case utils.ErrSelectionNotFound:
		utils.Error(c, 404, "SELECTION_NOT_FOUND", "Selection not found")
	case utils.ErrSelectionLocked:
		utils.Error(c, 409, "SELECTION_LOCKED", "Selection is no longer a draft")
	default:
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to update selection")
	}
}

func selectionID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Invalid selection ID")
		return 0, false
	}
	return id, true
}
