package service

import (
	"context"
	"io"
	"strings"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/pkg/apperror"
	"github.com/fretline/buildtrack-api/pkg/storage"
	"github.com/google/uuid"
)

// PhotoService handles build photos attached to notes
type PhotoService struct {
	noteRepo   repository.NoteRepository
	guitarRepo repository.GuitarRepository
	storage    *storage.LocalStorage
}

// NewPhotoService creates a new photo service
func NewPhotoService(noteRepo repository.NoteRepository, guitarRepo repository.GuitarRepository, store *storage.LocalStorage) *PhotoService {
	return &PhotoService{
		noteRepo:   noteRepo,
		guitarRepo: guitarRepo,
		storage:    store,
	}
}

// UploadPhotoInput represents an uploaded photo file
type UploadPhotoInput struct {
	NoteID     uuid.UUID
	FileName   string
	MimeType   string
	File       io.Reader
	SetAsCover bool
}

// UploadPhoto stores a photo under the guitar's object prefix, generates the
// thumbnail, attaches it to the note and bumps the guitar's photo count. The
// first photo on a guitar becomes its cover automatically.
func (s *PhotoService) UploadPhoto(ctx context.Context, input *UploadPhotoInput) (*entity.NotePhoto, error) {
	note, err := s.noteRepo.GetByID(ctx, input.NoteID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, apperror.NewNotFoundError("Note")
	}

	guitar, err := s.guitarRepo.GetByID(ctx, note.GuitarID)
	if err != nil {
		return nil, err
	}
	if guitar == nil {
		return nil, apperror.NewNotFoundError("Guitar")
	}

	stored, err := s.storage.SavePhoto("guitars/"+guitar.ID.String(), input.FileName, input.MimeType, input.File)
	if err != nil {
		switch err {
		case storage.ErrUnsupportedType:
			return nil, apperror.NewInvalidArgumentError("Unsupported image type; use JPEG, PNG or WebP")
		case storage.ErrTooLarge:
			return nil, apperror.NewInvalidArgumentError("Image exceeds the upload size limit")
		}
		return nil, err
	}

	photo := &entity.NotePhoto{
		NoteID:    note.ID,
		URL:       stored.URL,
		ObjectKey: stored.ObjectKey,
	}
	if stored.ThumbnailURL != "" {
		photo.ThumbnailURL = &stored.ThumbnailURL
	}

	if err := s.noteRepo.AddPhoto(ctx, photo); err != nil {
		// The object is orphaned otherwise
		_ = s.storage.Delete(stored.ObjectKey)
		return nil, err
	}

	if err := s.guitarRepo.AddPhotoCount(ctx, guitar.ID, 1); err != nil {
		return nil, err
	}

	if input.SetAsCover || guitar.CoverPhotoURL == nil {
		if err := s.guitarRepo.SetCoverPhoto(ctx, guitar.ID, &stored.URL); err != nil {
			return nil, err
		}
	}

	return photo, nil
}

// AttachExternalPhoto links an externally hosted photo to a note without
// storing anything locally
func (s *PhotoService) AttachExternalPhoto(ctx context.Context, noteID uuid.UUID, url string) (*entity.NotePhoto, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, apperror.NewInvalidArgumentError("Photo URL must be absolute")
	}

	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, apperror.NewNotFoundError("Note")
	}

	photo := &entity.NotePhoto{
		NoteID: note.ID,
		URL:    url,
	}

	if err := s.noteRepo.AddPhoto(ctx, photo); err != nil {
		return nil, err
	}

	if err := s.guitarRepo.AddPhotoCount(ctx, note.GuitarID, 1); err != nil {
		return nil, err
	}

	return photo, nil
}

// DeletePhoto removes a photo from its note. Stored objects are deleted from
// disk; external links are only unlinked.
func (s *PhotoService) DeletePhoto(ctx context.Context, photoID uuid.UUID) error {
	photo, err := s.noteRepo.GetPhoto(ctx, photoID)
	if err != nil {
		return err
	}
	if photo == nil {
		return apperror.NewNotFoundError("Photo")
	}

	note, err := s.noteRepo.GetByID(ctx, photo.NoteID)
	if err != nil {
		return err
	}
	if note == nil {
		return apperror.NewNotFoundError("Note")
	}

	if err := s.noteRepo.DeletePhoto(ctx, photoID); err != nil {
		return err
	}

	if !photo.IsExternal() {
		// Disk cleanup is best-effort once the row is gone
		_ = s.storage.Delete(photo.ObjectKey)
	}

	if err := s.guitarRepo.AddPhotoCount(ctx, note.GuitarID, -1); err != nil {
		return err
	}

	guitar, err := s.guitarRepo.GetByID(ctx, note.GuitarID)
	if err != nil {
		return err
	}
	if guitar != nil && guitar.CoverPhotoURL != nil && *guitar.CoverPhotoURL == photo.URL {
		return s.guitarRepo.SetCoverPhoto(ctx, guitar.ID, nil)
	}

	return nil
}

// SetCoverPhoto makes an existing photo the guitar's cover. The photo must
// belong to one of the guitar's notes.
func (s *PhotoService) SetCoverPhoto(ctx context.Context, guitarID, photoID uuid.UUID) error {
	photo, err := s.noteRepo.GetPhoto(ctx, photoID)
	if err != nil {
		return err
	}
	if photo == nil {
		return apperror.NewNotFoundError("Photo")
	}

	note, err := s.noteRepo.GetByID(ctx, photo.NoteID)
	if err != nil {
		return err
	}
	if note == nil || note.GuitarID != guitarID {
		return apperror.NewInvalidArgumentError("Photo does not belong to this guitar")
	}

	return s.guitarRepo.SetCoverPhoto(ctx, guitarID, &photo.URL)
}
