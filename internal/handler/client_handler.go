package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lumengrid/lumen_api/internal/service"
	"github.com/lumengrid/lumen_api/internal/utils"
)

// ClientHandler handles client management HTTP endpoints.
type ClientHandler struct {
	clientService *service.ClientService
}

// NewClientHandler constructs a ClientHandler.
func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// CreateClient handles POST /v1/admin/clients
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req struct {
		Name        string   `json:"name" binding:"required"`
		IPWhitelist []string `json:"ipWhitelist"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	client, err := h.clientService.Register(req.Name, req.IPWhitelist)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to create client")
		return
	}

	utils.Success(c, 201, "Client created successfully", client)
}

// GetClient handles GET /v1/admin/clients/:id
func (h *ClientHandler) GetClient(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Invalid client ID")
		return
	}

	client, err := h.clientService.GetByID(id)
	if err != nil {
		utils.Error(c, 404, "CLIENT_NOT_FOUND", "Client not found")
		return
	}

	utils.Success(c, 200, "Client retrieved", client)
}

// ListClients handles GET /v1/admin/clients
func (h *ClientHandler) ListClients(c *gin.Context) {
	clients, err := h.clientService.List()
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve clients")
		return
	}

	utils.Success(c, 200, "Clients retrieved", gin.H{
		"clients": clients,
		"total":   len(clients),
	})
}

// RegenerateKeys handles POST /v1/admin/clients/:id/regenerate
func (h *ClientHandler) RegenerateKeys(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Invalid client ID")
		return
	}

	var req struct {
		KeyType string `json:"keyType" binding:"required"` // "live", "sandbox", or "secret"
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "keyType is required")
		return
	}

	client, err := h.clientService.RegenerateKeys(id, req.KeyType)
	if err != nil {
		if err == utils.ErrInvalidClient {
			utils.Error(c, 404, "CLIENT_NOT_FOUND", "Client not found")
			return
		}
		if err.Error() == "invalid key_type: must be 'live', 'sandbox', or 'secret'" {
			utils.Error(c, 400, "INVALID_KEY_TYPE", err.Error())
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to regenerate keys")
		return
	}

	utils.Success(c, 200, "Keys regenerated successfully", client)
}

// UpdateClient handles PUT /v1/admin/clients/:id
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Invalid client ID")
		return
	}

	client, err := h.clientService.GetByID(id)
	if err != nil {
		utils.Error(c, 404, "CLIENT_NOT_FOUND", "Client not found")
		return
	}

	var req struct {
		Name        *string  `json:"name"`
		IPWhitelist []string `json:"ipWhitelist"`
		IsActive    *bool    `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.IPWhitelist != nil {
		client.IPWhitelist = req.IPWhitelist
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}

	if err := h.clientService.Update(client); err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to update client")
		return
	}

	utils.Success(c, 200, "Client updated successfully", client)
}
