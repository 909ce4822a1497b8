package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lumengrid/lumen_api/internal/models"
	"github.com/lumengrid/lumen_api/internal/service"
	"github.com/lumengrid/lumen_api/internal/utils"
)

// CustomerHandler handles dealer account HTTP endpoints.
type CustomerHandler struct {
	customerService *service.CustomerService
}

// NewCustomerHandler constructs a CustomerHandler.
func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// GetCustomer handles GET /v1/customers/:id
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Invalid customer ID")
		return
	}

	customer, err := h.customerService.GetByID(id)
	if err != nil {
		if err == utils.ErrCustomerNotFound {
			utils.Error(c, 404, "CUSTOMER_NOT_FOUND", "Customer not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve customer")
		return
	}

	utils.Success(c, 200, "Customer retrieved", customer)
}

// ListCustomers handles GET /v1/admin/customers
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	repID := 0
	if raw := c.Query("repId"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			repID = n
		}
	}
	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", 50)

	customers, total, err := h.customerService.List(repID, page, limit)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve customers")
		return
	}

	utils.SuccessWithPagination(c, 200, "Customers retrieved", customers, page, limit, total)
}

// CreateCustomer handles POST /v1/admin/customers
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		AccountCode string `json:"accountCode" binding:"required"`
		Email       string `json:"email"`
		RepID       int    `json:"repId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "name and accountCode are required")
		return
	}

	customer := &models.Customer{
		Name:        req.Name,
		AccountCode: req.AccountCode,
		Email:       req.Email,
		IsActive:    true,
	}
	if req.RepID > 0 {
		customer.RepID = &req.RepID
	}
	if err := h.customerService.Create(customer); err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to create customer")
		return
	}

	utils.Success(c, 201, "Customer created successfully", customer)
}
