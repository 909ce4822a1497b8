package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lumengrid/lumen_api/internal/models"
	"github.com/lumengrid/lumen_api/internal/repository"
	"github.com/lumengrid/lumen_api/internal/service"
	"github.com/lumengrid/lumen_api/internal/utils"
	"github.com/lumengrid/lumen_api/pkg/promo"
)

// PromotionHandler handles promotion HTTP endpoints, both the public active
// lookup and the admin CRUD surface.
type PromotionHandler struct {
	promoService *service.PromotionService
}

// NewPromotionHandler constructs a PromotionHandler.
func NewPromotionHandler(promoService *service.PromotionService) *PromotionHandler {
	return &PromotionHandler{promoService: promoService}
}

// GetActive handles GET /v1/promotions/active?vendor=<vendor>
func (h *PromotionHandler) GetActive(c *gin.Context) {
	vendor := c.Query("vendor")
	if vendor == "" {
		utils.Error(c, 400, "INVALID_REQUEST", "vendor query parameter is required")
		return
	}

	p, err := h.promoService.ActiveForVendor(vendor)
	if err != nil {
		if err == utils.ErrNoActivePromotion {
			utils.Error(c, 404, "NO_ACTIVE_PROMOTION", "No promotion is currently active for this vendor")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve promotion")
		return
	}

	utils.Success(c, 200, "Active promotion retrieved", p)
}

// ListPromotions handles GET /v1/admin/promotions
func (h *PromotionHandler) ListPromotions(c *gin.Context) {
	filter := &repository.PromotionFilter{
		Vendor: c.Query("vendor"),
		Page:   parseIntQuery(c, "page", 1),
		Limit:  parseIntQuery(c, "limit", 50),
	}
	if raw := c.Query("active"); raw != "" {
		active := raw == "true"
		filter.Active = &active
	}

	promotions, total, err := h.promoService.List(filter)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve promotions")
		return
	}

	utils.SuccessWithPagination(c, 200, "Promotions retrieved", promotions, filter.Page, filter.Limit, total)
}

// GetPromotion handles GET /v1/admin/promotions/:id
func (h *PromotionHandler) GetPromotion(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Invalid promotion ID")
		return
	}

	p, err := h.promoService.GetByID(id)
	if err != nil {
		if err == utils.ErrPromotionNotFound {
			utils.Error(c, 404, "PROMOTION_NOT_FOUND", "Promotion not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve promotion")
		return
	}

	utils.Success(c, 200, "Promotion retrieved", p)
}

// CreatePromotion handles POST /v1/admin/promotions
func (h *PromotionHandler) CreatePromotion(c *gin.Context) {
	var p models.Promotion
	if err := c.ShouldBindJSON(&p); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if err := h.promoService.Create(&p); err != nil {
		if details, ok := validationDetails(err); ok {
			utils.ErrorWithDetails(c, 422, "INVALID_PROMOTION", "Promotion configuration is invalid", details)
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to create promotion")
		return
	}

	utils.Success(c, 201, "Promotion created successfully", p)
}

// UpdatePromotion handles PUT /v1/admin/promotions/:id
func (h *PromotionHandler) UpdatePromotion(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Invalid promotion ID")
		return
	}

	var p models.Promotion
	if err := c.ShouldBindJSON(&p); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	p.ID = id

	if err := h.promoService.Update(&p); err != nil {
		if err == utils.ErrPromotionNotFound {
			utils.Error(c, 404, "PROMOTION_NOT_FOUND", "Promotion not found")
			return
		}
		if details, ok := validationDetails(err); ok {
			utils.ErrorWithDetails(c, 422, "INVALID_PROMOTION", "Promotion configuration is invalid", details)
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to update promotion")
		return
	}

	utils.Success(c, 200, "Promotion updated successfully", p)
}

// SetPromotionStatus handles PATCH /v1/admin/promotions/:id/status
func (h *PromotionHandler) SetPromotionStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Invalid promotion ID")
		return
	}

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "active field is required")
		return
	}

	if err := h.promoService.SetActive(id, *req.Active); err != nil {
		if err == utils.ErrPromotionNotFound {
			utils.Error(c, 404, "PROMOTION_NOT_FOUND", "Promotion not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to update promotion status")
		return
	}

	utils.Success(c, 200, "Promotion status updated", gin.H{"id": id, "active": *req.Active})
}

// DeletePromotion handles DELETE /v1/admin/promotions/:id
func (h *PromotionHandler) DeletePromotion(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Invalid promotion ID")
		return
	}

	if err := h.promoService.Delete(id); err != nil {
		if err == utils.ErrPromotionNotFound {
			utils.Error(c, 404, "PROMOTION_NOT_FOUND", "Promotion not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to delete promotion")
		return
	}

	utils.Success(c, 200, "Promotion deleted", gin.H{"id": id})
}

// ValidatePromotion handles POST /v1/admin/promotions/validate
// Dry-run validation used by the config form before saving.
func (h *PromotionHandler) ValidatePromotion(c *gin.Context) {
	var p models.Promotion
	if err := c.ShouldBindJSON(&p); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if err := h.promoService.CheckConfig(&p); err != nil {
		if details, ok := validationDetails(err); ok {
			utils.ErrorWithDetails(c, 422, "INVALID_PROMOTION", "Promotion configuration is invalid", details)
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to validate promotion")
		return
	}

	utils.Success(c, 200, "Promotion configuration is valid", gin.H{"valid": true})
}

func validationDetails(err error) ([]promo.ValidationError, bool) {
	var verrs promo.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}

func parseIntQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
