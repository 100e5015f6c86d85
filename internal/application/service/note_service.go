package service

import (
	"context"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
	"github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/pkg/apperror"
	"github.com/google/uuid"
)

// NoteService handles the append-only build note log
type NoteService struct {
	noteRepo   repository.NoteRepository
	guitarRepo repository.GuitarRepository
}

// NewNoteService creates a new note service
func NewNoteService(noteRepo repository.NoteRepository, guitarRepo repository.GuitarRepository) *NoteService {
	return &NoteService{
		noteRepo:   noteRepo,
		guitarRepo: guitarRepo,
	}
}

// CreateNoteInput represents the create note input
type CreateNoteInput struct {
	GuitarID        uuid.UUID
	AuthorID        uuid.UUID
	AuthorName      string
	Message         string
	Type            enum.NoteType
	VisibleToClient bool
}

// CreateNote appends a note to a guitar's log. The note snapshots the stage
// the guitar sits on at write time; later stage moves never rewrite it.
func (s *NoteService) CreateNote(ctx context.Context, input *CreateNoteInput) (*entity.Note, error) {
	guitar, err := s.guitarRepo.GetByID(ctx, input.GuitarID)
	if err != nil {
		return nil, err
	}
	if guitar == nil {
		return nil, apperror.NewNotFoundError("Guitar")
	}
	if guitar.Archived {
		return nil, apperror.NewFailedPreconditionError("Guitar is archived")
	}

	note := &entity.Note{
		GuitarID:        input.GuitarID,
		StageID:         guitar.StageID,
		AuthorID:        input.AuthorID,
		AuthorName:      input.AuthorName,
		Message:         input.Message,
		Type:            input.Type,
		VisibleToClient: input.VisibleToClient,
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}

	return note, nil
}

// GetNote retrieves a note with its photos
func (s *NoteService) GetNote(ctx context.Context, id uuid.UUID) (*entity.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, apperror.NewNotFoundError("Note")
	}
	return note, nil
}

// ListNotes returns a guitar's notes newest first. Clients only ever see
// notes marked visible to them; visibleOnly applies that filter.
func (s *NoteService) ListNotes(ctx context.Context, guitarID uuid.UUID, visibleOnly bool) ([]entity.Note, error) {
	guitar, err := s.guitarRepo.GetByID(ctx, guitarID)
	if err != nil {
		return nil, err
	}
	if guitar == nil {
		return nil, apperror.NewNotFoundError("Guitar")
	}

	return s.noteRepo.ListByGuitar(ctx, guitarID, visibleOnly)
}
