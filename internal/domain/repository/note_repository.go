package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/fretline/buildtrack-api/internal/domain/entity"
)

// NoteRepository defines the interface for note data operations
type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Note, error)
	// ListByGuitar returns notes newest first; visibleOnly restricts to
	// client-visible notes.
	ListByGuitar(ctx context.Context, guitarID uuid.UUID, visibleOnly bool) ([]entity.Note, error)

	AddPhoto(ctx context.Context, photo *entity.NotePhoto) error
	GetPhoto(ctx context.Context, id uuid.UUID) (*entity.NotePhoto, error)
	DeletePhoto(ctx context.Context, id uuid.UUID) error
}
