package handler

import (
	"github.com/fretline/buildtrack-api/internal/application/service"
	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
	"github.com/fretline/buildtrack-api/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
)

// CustomShopHandler handles custom shop enquiry HTTP requests
type CustomShopHandler struct {
	customShopService *service.CustomShopService
}

// NewCustomShopHandler creates a new custom shop handler
func NewCustomShopHandler(customShopService *service.CustomShopService) *CustomShopHandler {
	return &CustomShopHandler{customShopService: customShopService}
}

// Submit handles a public custom shop enquiry submission
func (h *CustomShopHandler) Submit(c *gin.Context) {
	var req struct {
		Name    string            `json:"name" binding:"required,max=255"`
		Email   string            `json:"email" binding:"required,email"`
		Model   string            `json:"model" binding:"max=255"`
		Specs   map[string]string `json:"specs"`
		Message string            `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	request, err := h.customShopService.SubmitRequest(c.Request.Context(), &service.SubmitRequestInput{
		Name:    req.Name,
		Email:   req.Email,
		Model:   req.Model,
		Specs:   entity.SpecMap(req.Specs),
		Message: req.Message,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Request submitted successfully", request)
}

// List handles listing custom shop requests
func (h *CustomShopHandler) List(c *gin.Context) {
	params := GetPaginationParams(c)

	var status *enum.RequestStatus
	if statusStr := c.Query("status"); statusStr != "" {
		parsed, ok := parseRequestStatus(statusStr)
		if !ok {
			response.BadRequest(c, "Invalid status filter")
			return
		}
		status = &parsed
	}

	result, err := h.customShopService.ListRequests(c.Request.Context(), params, status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Requests retrieved successfully", result)
}

// Get handles retrieving a custom shop request
func (h *CustomShopHandler) Get(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid request ID")
		return
	}

	request, err := h.customShopService.GetRequest(c.Request.Context(), *id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Request retrieved successfully", request)
}

// UpdateStatus moves a request through the review workflow
func (h *CustomShopHandler) UpdateStatus(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid request ID")
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	status, ok := parseRequestStatus(req.Status)
	if !ok {
		response.BadRequest(c, "Invalid status")
		return
	}

	request, err := h.customShopService.UpdateStatus(c.Request.Context(), *id, status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Status updated successfully", request)
}

func parseRequestStatus(s string) (enum.RequestStatus, bool) {
	switch s {
	case "new":
		return enum.RequestStatusNew, true
	case "reviewing":
		return enum.RequestStatusReviewing, true
	case "quoted":
		return enum.RequestStatusQuoted, true
	case "declined":
		return enum.RequestStatusDeclined, true
	case "converted":
		return enum.RequestStatusConverted, true
	}
	return 0, false
}
