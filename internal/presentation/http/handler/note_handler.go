package handler

import (
	"github.com/fretline/buildtrack-api/internal/application/service"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
	"github.com/fretline/buildtrack-api/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
)

// NoteHandler handles build note and photo HTTP requests
type NoteHandler struct {
	noteService  *service.NoteService
	photoService *service.PhotoService
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteService *service.NoteService, photoService *service.PhotoService) *NoteHandler {
	return &NoteHandler{
		noteService:  noteService,
		photoService: photoService,
	}
}

// Create appends a note to a guitar's log
func (h *NoteHandler) Create(c *gin.Context) {
	guitarID := ParseUUIDParam(c, "id")
	if guitarID == nil {
		response.BadRequest(c, "Invalid guitar ID")
		return
	}

	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		Message         string `json:"message" binding:"required"`
		Type            string `json:"type"`
		VisibleToClient bool   `json:"visible_to_client"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	note, err := h.noteService.CreateNote(c.Request.Context(), &service.CreateNoteInput{
		GuitarID:        *guitarID,
		AuthorID:        *userID,
		AuthorName:      GetUserName(c),
		Message:         req.Message,
		Type:            enum.ParseNoteType(req.Type),
		VisibleToClient: req.VisibleToClient,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Note added successfully", note)
}

// List returns a guitar's notes. Client-only users see only notes marked
// visible to them.
func (h *NoteHandler) List(c *gin.Context) {
	guitarID := ParseUUIDParam(c, "id")
	if guitarID == nil {
		response.BadRequest(c, "Invalid guitar ID")
		return
	}

	visibleOnly := IsClientOnly(c)
	notes, err := h.noteService.ListNotes(c.Request.Context(), *guitarID, visibleOnly)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Notes retrieved successfully", notes)
}

// UploadPhoto stores an uploaded photo against a note
func (h *NoteHandler) UploadPhoto(c *gin.Context) {
	noteID := ParseUUIDParam(c, "noteId")
	if noteID == nil {
		response.BadRequest(c, "Invalid note ID")
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		response.BadRequest(c, "A photo file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	photo, err := h.photoService.UploadPhoto(c.Request.Context(), &service.UploadPhotoInput{
		NoteID:     *noteID,
		FileName:   fileHeader.Filename,
		MimeType:   fileHeader.Header.Get("Content-Type"),
		File:       file,
		SetAsCover: c.PostForm("set_as_cover") == "true",
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Photo uploaded successfully", photo)
}

// AttachExternalPhoto links an externally hosted photo to a note
func (h *NoteHandler) AttachExternalPhoto(c *gin.Context) {
	noteID := ParseUUIDParam(c, "noteId")
	if noteID == nil {
		response.BadRequest(c, "Invalid note ID")
		return
	}

	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	photo, err := h.photoService.AttachExternalPhoto(c.Request.Context(), *noteID, req.URL)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Photo linked successfully", photo)
}

// DeletePhoto removes a photo from its note
func (h *NoteHandler) DeletePhoto(c *gin.Context) {
	photoID := ParseUUIDParam(c, "photoId")
	if photoID == nil {
		response.BadRequest(c, "Invalid photo ID")
		return
	}

	if err := h.photoService.DeletePhoto(c.Request.Context(), *photoID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Photo deleted successfully", nil)
}

// SetCoverPhoto makes an existing photo the guitar's cover
func (h *NoteHandler) SetCoverPhoto(c *gin.Context) {
	guitarID := ParseUUIDParam(c, "id")
	if guitarID == nil {
		response.BadRequest(c, "Invalid guitar ID")
		return
	}

	photoID := ParseUUIDParam(c, "photoId")
	if photoID == nil {
		response.BadRequest(c, "Invalid photo ID")
		return
	}

	if err := h.photoService.SetCoverPhoto(c.Request.Context(), *guitarID, *photoID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cover photo updated successfully", nil)
}
