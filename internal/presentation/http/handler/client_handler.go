package handler

import (
	"github.com/fretline/buildtrack-api/internal/application/service"
	"github.com/fretline/buildtrack-api/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
)

// ClientHandler handles client profile HTTP requests and the portal surface
type ClientHandler struct {
	clientService  *service.ClientService
	guitarService  *service.GuitarService
	invoiceService *service.InvoiceService
}

// NewClientHandler creates a new client handler
func NewClientHandler(
	clientService *service.ClientService,
	guitarService *service.GuitarService,
	invoiceService *service.InvoiceService,
) *ClientHandler {
	return &ClientHandler{
		clientService:  clientService,
		guitarService:  guitarService,
		invoiceService: invoiceService,
	}
}

// Create handles creating a client profile
func (h *ClientHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		Name    string  `json:"name" binding:"required,max=255"`
		Email   string  `json:"email" binding:"required,email"`
		Phone   *string `json:"phone"`
		Address *string `json:"address"`
		Country *string `json:"country"`
		Invite  bool    `json:"invite"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), &service.CreateClientInput{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Country:   req.Country,
		CreatedBy: *userID,
		Invite:    req.Invite,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Client created successfully", client)
}

// List handles listing clients
func (h *ClientHandler) List(c *gin.Context) {
	params := GetPaginationParams(c)
	search := c.Query("search")

	result, err := h.clientService.ListClients(c.Request.Context(), params, search)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Clients retrieved successfully", result)
}

// Get handles retrieving a client by ID
func (h *ClientHandler) Get(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid client ID")
		return
	}

	client, err := h.clientService.GetClient(c.Request.Context(), *id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client retrieved successfully", client)
}

// Update handles updating a client profile
func (h *ClientHandler) Update(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid client ID")
		return
	}

	var req struct {
		Name    *string `json:"name"`
		Email   *string `json:"email" binding:"omitempty,email"`
		Phone   *string `json:"phone"`
		Address *string `json:"address"`
		Country *string `json:"country"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), &service.UpdateClientInput{
		ID:      *id,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Country: req.Country,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client updated successfully", client)
}

// Delete handles deleting a client profile
func (h *ClientHandler) Delete(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid client ID")
		return
	}

	if err := h.clientService.DeleteClient(c.Request.Context(), *id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client deleted successfully", nil)
}

// Invite sends (or resends) the portal invite to a client
func (h *ClientHandler) Invite(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid client ID")
		return
	}

	if err := h.clientService.InviteClient(c.Request.Context(), *id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invite sent", nil)
}

// AssignRun gives a client visibility of a run
func (h *ClientHandler) AssignRun(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	runID := ParseUUIDParam(c, "runId")
	if id == nil || runID == nil {
		response.BadRequest(c, "Invalid ID")
		return
	}

	if err := h.clientService.AssignRun(c.Request.Context(), *id, *runID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Run assigned successfully", nil)
}

// RemoveRun removes a client's visibility of a run
func (h *ClientHandler) RemoveRun(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	runID := ParseUUIDParam(c, "runId")
	if id == nil || runID == nil {
		response.BadRequest(c, "Invalid ID")
		return
	}

	if err := h.clientService.RemoveRun(c.Request.Context(), *id, *runID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Run removed successfully", nil)
}

// MyBuilds returns the authenticated client's unarchived builds
func (h *ClientHandler) MyBuilds(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	client, err := h.clientService.GetClientByUserID(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	builds, err := h.guitarService.ListClientBuilds(c.Request.Context(), client.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Builds retrieved successfully", builds)
}

// MyBuild returns one of the authenticated client's builds with
// client-visible notes
func (h *ClientHandler) MyBuild(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid build ID")
		return
	}

	client, err := h.clientService.GetClientByUserID(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	build, err := h.guitarService.GetClientBuild(c.Request.Context(), client.ID, *id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Build retrieved successfully", build)
}

// MyInvoices returns the authenticated client's invoices
func (h *ClientHandler) MyInvoices(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	client, err := h.clientService.GetClientByUserID(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.invoiceService.ListClientInvoices(c.Request.Context(), client.ID, GetPaginationParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Invoices retrieved successfully", result)
}
