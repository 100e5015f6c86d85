package handler

import (
	"strconv"

	"github.com/fretline/buildtrack-api/internal/application/service"
	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
	"github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/internal/presentation/http/dto/request"
	"github.com/fretline/buildtrack-api/internal/presentation/http/dto/response"
	"github.com/fretline/buildtrack-api/pkg/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GuitarHandler handles build order HTTP requests
type GuitarHandler struct {
	guitarService *service.GuitarService
}

// NewGuitarHandler creates a new guitar handler
func NewGuitarHandler(guitarService *service.GuitarService) *GuitarHandler {
	return &GuitarHandler{guitarService: guitarService}
}

// Create handles creating a build order
func (h *GuitarHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateGuitarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	runID, err := uuid.Parse(req.RunID)
	if err != nil {
		response.BadRequest(c, "Invalid run ID")
		return
	}

	input := &service.CreateGuitarInput{
		RunID:         runID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Model:         req.Model,
		Finish:        req.Finish,
		Specs:         entity.SpecMap(req.Specs),
		ActorID:       *userID,
	}

	if req.ClientID != nil {
		clientID, err := uuid.Parse(*req.ClientID)
		if err != nil {
			response.BadRequest(c, "Invalid client ID")
			return
		}
		input.ClientID = &clientID
	}

	guitar, err := h.guitarService.CreateGuitar(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Guitar created successfully", guitar)
}

// List handles listing guitars (supports both page-based and cursor-based
// pagination)
func (h *GuitarHandler) List(c *gin.Context) {
	if cursor := c.Query("cursor"); cursor != "" || c.Query("limit") != "" {
		h.listWithCursor(c)
		return
	}

	params := &repository.GuitarFilterParams{
		Pagination:      GetPaginationParams(c),
		Search:          c.Query("search"),
		IncludeArchived: c.Query("include_archived") == "true",
		SortBy:          c.DefaultQuery("sort_by", "created_at"),
		SortOrder:       c.DefaultQuery("sort_order", "desc"),
	}
	if !h.bindFilters(c, &params.RunID, &params.StageID, &params.ClientID) {
		return
	}

	guitars, total, err := h.guitarService.ListGuitars(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Guitars retrieved successfully", gin.H{
		"guitars": guitars,
		"total":   total,
	})
}

func (h *GuitarHandler) listWithCursor(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "15"))

	params := &repository.GuitarCursorFilterParams{
		Cursor: &pagination.CursorParams{
			Cursor:    c.Query("cursor"),
			Direction: pagination.CursorDirection(c.DefaultQuery("direction", "next")),
			Limit:     limit,
		},
		Search:          c.Query("search"),
		IncludeArchived: c.Query("include_archived") == "true",
	}
	if !h.bindFilters(c, &params.RunID, &params.StageID, &params.ClientID) {
		return
	}

	guitars, err := h.guitarService.ListGuitarsWithCursor(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Guitars retrieved successfully", guitars)
}

func (h *GuitarHandler) bindFilters(c *gin.Context, runID, stageID, clientID **uuid.UUID) bool {
	for query, target := range map[string]**uuid.UUID{
		"run_id":    runID,
		"stage_id":  stageID,
		"client_id": clientID,
	} {
		if value := c.Query(query); value != "" {
			id, err := uuid.Parse(value)
			if err != nil {
				response.BadRequest(c, "Invalid "+query)
				return false
			}
			*target = &id
		}
	}
	return true
}

// Get handles retrieving a guitar with notes and transition history
func (h *GuitarHandler) Get(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid guitar ID")
		return
	}

	guitar, err := h.guitarService.GetGuitar(c.Request.Context(), *id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Guitar retrieved successfully", guitar)
}

// Update handles updating a guitar's order details
func (h *GuitarHandler) Update(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid guitar ID")
		return
	}

	var req request.UpdateGuitarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.UpdateGuitarInput{
		ID:            *id,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Model:         req.Model,
		Finish:        req.Finish,
		Specs:         entity.SpecMap(req.Specs),
	}

	if req.ClientID != nil {
		clientID, err := uuid.Parse(*req.ClientID)
		if err != nil {
			response.BadRequest(c, "Invalid client ID")
			return
		}
		input.ClientID = &clientID
	}

	guitar, err := h.guitarService.UpdateGuitar(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Guitar updated successfully", guitar)
}

// Archive handles archiving a build order
func (h *GuitarHandler) Archive(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid guitar ID")
		return
	}

	if err := h.guitarService.ArchiveGuitar(c.Request.Context(), *id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Guitar archived successfully", nil)
}

// Advance moves a guitar to another stage of its run
func (h *GuitarHandler) Advance(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid guitar ID")
		return
	}

	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.AdvanceStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	stageID, err := uuid.Parse(req.StageID)
	if err != nil {
		response.BadRequest(c, "Invalid stage ID")
		return
	}

	// Advance notes default to the status-change type
	noteType := enum.NoteTypeStatusChange
	if req.NoteType != "" {
		noteType = enum.ParseNoteType(req.NoteType)
	}

	guitar, err := h.guitarService.AdvanceStage(c.Request.Context(), &service.AdvanceStageInput{
		GuitarID:      *id,
		StageID:       stageID,
		ActorID:       *userID,
		ActorName:     GetUserName(c),
		NoteMessage:   req.Note,
		NoteType:      noteType,
		NoteVisible:   req.VisibleToClient,
		NotePhotoURLs: req.PhotoURLs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Guitar advanced successfully", guitar)
}

// Transitions returns the guitar's stage history, oldest first
func (h *GuitarHandler) Transitions(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid guitar ID")
		return
	}

	transitions, err := h.guitarService.ListTransitions(c.Request.Context(), *id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transitions retrieved successfully", transitions)
}
