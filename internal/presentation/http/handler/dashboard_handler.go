package handler

import (
	"github.com/fretline/buildtrack-api/internal/application/service"
	"github.com/fretline/buildtrack-api/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
)

// DashboardHandler handles staff dashboard HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetOverview returns the workshop-wide headline numbers
func (h *DashboardHandler) GetOverview(c *gin.Context) {
	overview, err := h.dashboardService.GetOverview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dashboard retrieved successfully", overview)
}

// GetStageDistribution returns guitar counts per stage for a run
func (h *DashboardHandler) GetStageDistribution(c *gin.Context) {
	runID := ParseUUIDParam(c, "id")
	if runID == nil {
		response.BadRequest(c, "Invalid run ID")
		return
	}

	distribution, err := h.dashboardService.GetStageDistribution(c.Request.Context(), *runID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Stage distribution retrieved successfully", distribution)
}
