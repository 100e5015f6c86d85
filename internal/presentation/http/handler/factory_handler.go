package handler

import (
	"github.com/fretline/buildtrack-api/internal/application/service"
	"github.com/fretline/buildtrack-api/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
)

// FactoryHandler handles factory-related HTTP requests
type FactoryHandler struct {
	factoryService *service.FactoryService
}

// NewFactoryHandler creates a new factory handler
func NewFactoryHandler(factoryService *service.FactoryService) *FactoryHandler {
	return &FactoryHandler{factoryService: factoryService}
}

// Create handles creating a factory
func (h *FactoryHandler) Create(c *gin.Context) {
	var req struct {
		Name         string  `json:"name" binding:"required,max=255"`
		Location     *string `json:"location"`
		ContactName  *string `json:"contact_name"`
		ContactEmail *string `json:"contact_email" binding:"omitempty,email"`
		ContactPhone *string `json:"contact_phone"`
		Notes        *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	factory, err := h.factoryService.CreateFactory(c.Request.Context(), &service.CreateFactoryInput{
		Name:         req.Name,
		Location:     req.Location,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Notes:        req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Factory created successfully", factory)
}

// List handles listing factories
func (h *FactoryHandler) List(c *gin.Context) {
	params := GetPaginationParams(c)
	search := c.Query("search")

	result, err := h.factoryService.ListFactories(c.Request.Context(), params, search)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Factories retrieved successfully", result)
}

// Get handles retrieving a factory by ID
func (h *FactoryHandler) Get(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid factory ID")
		return
	}

	factory, err := h.factoryService.GetFactory(c.Request.Context(), *id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Factory retrieved successfully", factory)
}

// Update handles updating a factory
func (h *FactoryHandler) Update(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid factory ID")
		return
	}

	var req struct {
		Name         *string `json:"name"`
		Location     *string `json:"location"`
		ContactName  *string `json:"contact_name"`
		ContactEmail *string `json:"contact_email" binding:"omitempty,email"`
		ContactPhone *string `json:"contact_phone"`
		Notes        *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	factory, err := h.factoryService.UpdateFactory(c.Request.Context(), &service.UpdateFactoryInput{
		ID:           *id,
		Name:         req.Name,
		Location:     req.Location,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Notes:        req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Factory updated successfully", factory)
}

// Delete handles deleting a factory
func (h *FactoryHandler) Delete(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid factory ID")
		return
	}

	if err := h.factoryService.DeleteFactory(c.Request.Context(), *id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Factory deleted successfully", nil)
}
