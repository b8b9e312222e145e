package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"finbook/internal/service"
)

// ClientHandler handles customer management endpoints.
type ClientHandler struct {
	clientService service.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// parsePagination reads offset/limit query params with defaults.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return offset, limit
}

// Create handles POST /api/v1/clients
func (h *ClientHandler) Create(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.ClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), businessID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, client)
}

// List handles GET /api/v1/clients
func (h *ClientHandler) List(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)
	clients, total, err := h.clientService.List(c.Request.Context(), businessID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, clients, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/clients/:id
func (h *ClientHandler) GetByID(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	clientID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	client, err := h.clientService.Get(c.Request.Context(), businessID, clientID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, client)
}

// Update handles PUT /api/v1/clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	clientID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var input service.ClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), businessID, clientID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, client)
}

// Delete handles DELETE /api/v1/clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	clientID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.clientService.Delete(c.Request.Context(), businessID, clientID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "client deleted"})
}
