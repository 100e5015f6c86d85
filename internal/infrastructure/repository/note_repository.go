package repository

import (
	"context"
	"errors"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	domainRepo "github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *gorm.DB) domainRepo.NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *entity.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *noteRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Note, error) {
	var note entity.Note
	err := r.db.WithContext(ctx).
		Preload("Photos").
		First(&note, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &note, err
}

func (r *noteRepository) ListByGuitar(ctx context.Context, guitarID uuid.UUID, visibleOnly bool) ([]entity.Note, error) {
	var notes []entity.Note

	query := r.db.WithContext(ctx).Where("guitar_id = ?", guitarID)
	if visibleOnly {
		query = query.Where("visible_to_client = ?", true)
	}

	err := query.
		Preload("Photos").
		Preload("Stage").
		Order("created_at DESC").
		Find(&notes).Error
	return notes, err
}

func (r *noteRepository) AddPhoto(ctx context.Context, photo *entity.NotePhoto) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

func (r *noteRepository) GetPhoto(ctx context.Context, id uuid.UUID) (*entity.NotePhoto, error) {
	var photo entity.NotePhoto
	err := r.db.WithContext(ctx).First(&photo, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &photo, err
}

func (r *noteRepository) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.NotePhoto{}, "id = ?", id).Error
}
