package handler

import (
	"github.com/fretline/buildtrack-api/internal/application/service"
	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/internal/presentation/http/dto/request"
	"github.com/fretline/buildtrack-api/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RunHandler handles production run HTTP requests
type RunHandler struct {
	runService    *service.RunService
	exportService *service.ExportService
}

// NewRunHandler creates a new run handler
func NewRunHandler(runService *service.RunService, exportService *service.ExportService) *RunHandler {
	return &RunHandler{
		runService:    runService,
		exportService: exportService,
	}
}

// Create handles creating a run with its stage pipeline
func (h *RunHandler) Create(c *gin.Context) {
	var req request.CreateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.CreateRunInput{
		Name:            req.Name,
		StartsAt:        req.StartsAt,
		SpecConstraints: entity.SpecConstraints(req.SpecConstraints),
	}

	if req.FactoryID != nil {
		factoryID, err := uuid.Parse(*req.FactoryID)
		if err != nil {
			response.BadRequest(c, "Invalid factory ID")
			return
		}
		input.FactoryID = &factoryID
	}

	for _, stage := range req.Stages {
		input.Stages = append(input.Stages, service.StageInput{
			Label:             stage.Label,
			ClientStatusLabel: stage.ClientStatusLabel,
			InternalOnly:      stage.InternalOnly,
			RequiresNote:      stage.RequiresNote,
			RequiresPhoto:     stage.RequiresPhoto,
			InvoiceAmount:     stage.InvoiceAmount,
			InvoiceMemo:       stage.InvoiceMemo,
		})
	}

	run, err := h.runService.CreateRun(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Run created successfully", run)
}

// List handles listing runs
func (h *RunHandler) List(c *gin.Context) {
	params := &repository.RunFilterParams{
		Pagination:      GetPaginationParams(c),
		Search:          c.Query("search"),
		ActiveOnly:      c.Query("active") == "true",
		IncludeArchived: c.Query("include_archived") == "true",
	}

	if factoryIDStr := c.Query("factory_id"); factoryIDStr != "" {
		factoryID, err := uuid.Parse(factoryIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid factory ID")
			return
		}
		params.FactoryID = &factoryID
	}

	runs, total, err := h.runService.ListRuns(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Runs retrieved successfully", gin.H{
		"runs":  runs,
		"total": total,
	})
}

// Get handles retrieving a run with its stages
func (h *RunHandler) Get(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid run ID")
		return
	}

	run, err := h.runService.GetRun(c.Request.Context(), *id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Run retrieved successfully", run)
}

// Update handles updating a run's metadata
func (h *RunHandler) Update(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid run ID")
		return
	}

	var req request.UpdateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.UpdateRunInput{
		ID:              *id,
		Name:            req.Name,
		IsActive:        req.IsActive,
		StartsAt:        req.StartsAt,
		SpecConstraints: entity.SpecConstraints(req.SpecConstraints),
	}

	if req.FactoryID != nil {
		factoryID, err := uuid.Parse(*req.FactoryID)
		if err != nil {
			response.BadRequest(c, "Invalid factory ID")
			return
		}
		input.FactoryID = &factoryID
	}

	run, err := h.runService.UpdateRun(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Run updated successfully", run)
}

// Archive handles archiving a run
func (h *RunHandler) Archive(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid run ID")
		return
	}

	if err := h.runService.ArchiveRun(c.Request.Context(), *id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Run archived successfully", nil)
}

// AddStage appends a stage to the run's pipeline
func (h *RunHandler) AddStage(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid run ID")
		return
	}

	var req request.StageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	stage, err := h.runService.AddStage(c.Request.Context(), *id, &service.StageInput{
		Label:             req.Label,
		ClientStatusLabel: req.ClientStatusLabel,
		InternalOnly:      req.InternalOnly,
		RequiresNote:      req.RequiresNote,
		RequiresPhoto:     req.RequiresPhoto,
		InvoiceAmount:     req.InvoiceAmount,
		InvoiceMemo:       req.InvoiceMemo,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Stage added successfully", stage)
}

// UpdateStage handles updating a stage's attributes
func (h *RunHandler) UpdateStage(c *gin.Context) {
	stageID := ParseUUIDParam(c, "stageId")
	if stageID == nil {
		response.BadRequest(c, "Invalid stage ID")
		return
	}

	var req request.UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	stage, err := h.runService.UpdateStage(c.Request.Context(), &service.UpdateStageInput{
		ID:                *stageID,
		Label:             req.Label,
		ClientStatusLabel: req.ClientStatusLabel,
		InternalOnly:      req.InternalOnly,
		RequiresNote:      req.RequiresNote,
		RequiresPhoto:     req.RequiresPhoto,
		InvoiceAmount:     req.InvoiceAmount,
		InvoiceMemo:       req.InvoiceMemo,
		ClearInvoice:      req.ClearInvoice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Stage updated successfully", stage)
}

// DeleteStage removes an unoccupied stage
func (h *RunHandler) DeleteStage(c *gin.Context) {
	stageID := ParseUUIDParam(c, "stageId")
	if stageID == nil {
		response.BadRequest(c, "Invalid stage ID")
		return
	}

	if err := h.runService.DeleteStage(c.Request.Context(), *stageID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Stage deleted successfully", nil)
}

// ReorderStages rewrites the run's stage order
func (h *RunHandler) ReorderStages(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid run ID")
		return
	}

	var req request.ReorderStagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	stageIDs := make([]uuid.UUID, 0, len(req.StageIDs))
	for _, idStr := range req.StageIDs {
		stageID, err := uuid.Parse(idStr)
		if err != nil {
			response.BadRequest(c, "Invalid stage ID: "+idStr)
			return
		}
		stageIDs = append(stageIDs, stageID)
	}

	stages, err := h.runService.ReorderStages(c.Request.Context(), *id, stageIDs)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Stages reordered successfully", stages)
}

// PostUpdate broadcasts an update to every client with a build in the run
func (h *RunHandler) PostUpdate(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid run ID")
		return
	}

	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.PostRunUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	update, err := h.runService.PostUpdate(c.Request.Context(), &service.PostUpdateInput{
		RunID:    *id,
		AuthorID: *userID,
		Subject:  req.Subject,
		Body:     req.Body,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Update posted successfully", update)
}

// ListUpdates returns the run's broadcast updates
func (h *RunHandler) ListUpdates(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid run ID")
		return
	}

	updates, err := h.runService.ListUpdates(c.Request.Context(), *id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Updates retrieved successfully", updates)
}

// Export streams the run's build sheet as an xlsx download
func (h *RunHandler) Export(c *gin.Context) {
	f, filename, err := h.exportService.ExportRunGuitars(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := f.Write(c.Writer); err != nil {
		response.Error(c, err)
	}
}
