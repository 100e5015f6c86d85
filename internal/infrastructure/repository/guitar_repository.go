package repository

import (
	"context"
	"errors"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	domainRepo "github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type guitarRepository struct {
	db *gorm.DB
}

// NewGuitarRepository creates a new guitar repository
func NewGuitarRepository(db *gorm.DB) domainRepo.GuitarRepository {
	return &guitarRepository{db: db}
}

func (r *guitarRepository) Create(ctx context.Context, guitar *entity.Guitar, placement *entity.StageTransition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(guitar).Error; err != nil {
			return err
		}
		placement.GuitarID = guitar.ID
		return tx.Create(placement).Error
	})
}

func (r *guitarRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Guitar, error) {
	var guitar entity.Guitar
	err := r.db.WithContext(ctx).
		Preload("Stage").
		First(&guitar, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &guitar, err
}

func (r *guitarRepository) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Guitar, error) {
	var guitar entity.Guitar
	err := r.db.WithContext(ctx).
		Preload("Stage").
		Preload("Client").
		Preload("Notes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Notes.Photos").
		Preload("Transitions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Transitions.FromStage").
		Preload("Transitions.ToStage").
		First(&guitar, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &guitar, err
}

func (r *guitarRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*entity.Guitar, error) {
	var guitar entity.Guitar
	err := r.db.WithContext(ctx).First(&guitar, "order_number = ?", orderNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &guitar, err
}

func (r *guitarRepository) Update(ctx context.Context, guitar *entity.Guitar) error {
	return r.db.WithContext(ctx).Save(guitar).Error
}

func (r *guitarRepository) Archive(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&entity.Guitar{}).
		Where("id = ?", id).
		Update("archived", true).Error
}

func (r *guitarRepository) List(ctx context.Context, params *domainRepo.GuitarFilterParams) ([]entity.Guitar, int64, error) {
	var guitars []entity.Guitar
	var total int64

	query := r.applyFilters(r.db.WithContext(ctx).Model(&entity.Guitar{}), params.Search,
		params.RunID, params.StageID, params.ClientID, params.IncludeArchived)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Sorting
	sortBy := "created_at"
	sortOrder := "DESC"
	if params.SortBy != "" {
		sortBy = params.SortBy
	}
	if params.SortOrder == "ASC" || params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Stage").
		Preload("Client").
		Order(sortBy + " " + sortOrder).
		Find(&guitars).Error

	return guitars, total, err
}

// ListWithCursor returns guitars using cursor-based pagination
func (r *guitarRepository) ListWithCursor(ctx context.Context, params *domainRepo.GuitarCursorFilterParams) ([]entity.Guitar, error) {
	var guitars []entity.Guitar

	params.Cursor.Validate()
	query := r.applyFilters(r.db.WithContext(ctx).Model(&entity.Guitar{}), params.Search,
		params.RunID, params.StageID, params.ClientID, params.IncludeArchived)

	cursor, err := params.Cursor.DecodeCursor()
	if err != nil {
		return nil, err
	}

	if cursor != nil {
		if params.Cursor.Direction == pagination.CursorDirectionNext {
			query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
		} else {
			query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
		}
	}

	err = query.Limit(params.Cursor.Limit + 1).
		Preload("Stage").
		Preload("Client").
		Order("created_at ASC, id ASC").
		Find(&guitars).Error

	return guitars, err
}

func (r *guitarRepository) applyFilters(query *gorm.DB, search string, runID, stageID, clientID *uuid.UUID, includeArchived bool) *gorm.DB {
	query = query.Scopes(NotArchived(includeArchived))

	if search != "" {
		query = query.Where("order_number ILIKE ? OR model ILIKE ? OR customer_name ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}
	if runID != nil {
		query = query.Where("run_id = ?", *runID)
	}
	if stageID != nil {
		query = query.Where("stage_id = ?", *stageID)
	}
	if clientID != nil {
		query = query.Where("client_id = ?", *clientID)
	}

	return query
}

func (r *guitarRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]entity.Guitar, error) {
	var guitars []entity.Guitar
	err := r.db.WithContext(ctx).
		Scopes(NotArchived(false)).
		Where("client_id = ?", clientID).
		Preload("Stage").
		Order("created_at DESC").
		Find(&guitars).Error
	return guitars, err
}

func (r *guitarRepository) CountByRun(ctx context.Context, runID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Guitar{}).
		Scopes(NotArchived(false)).
		Where("run_id = ?", runID).
		Count(&count).Error
	return count, err
}

// AdvanceStage commits the whole transition bundle atomically: the stage
// pointer update, the transition record, the optional note, the scheduled
// invoice and the outbox rows all land or none do.
func (r *guitarRepository) AdvanceStage(ctx context.Context, advance *domainRepo.StageAdvance) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if advance.Note != nil {
			if err := tx.Create(advance.Note).Error; err != nil {
				return err
			}
			advance.Transition.NoteID = &advance.Note.ID
		}

		if err := tx.Create(advance.Transition).Error; err != nil {
			return err
		}

		if err := tx.Model(&entity.Guitar{}).
			Where("id = ?", advance.Guitar.ID).
			Update("stage_id", advance.Transition.ToStageID).Error; err != nil {
			return err
		}

		if advance.Invoice != nil {
			if err := tx.Create(advance.Invoice).Error; err != nil {
				return err
			}
		}

		if len(advance.Emails) > 0 {
			for i := range advance.Emails {
				advance.Emails[i].EnsureID()
			}
			if err := tx.Create(&advance.Emails).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *guitarRepository) ListTransitions(ctx context.Context, guitarID uuid.UUID) ([]entity.StageTransition, error) {
	var transitions []entity.StageTransition
	err := r.db.WithContext(ctx).
		Where("guitar_id = ?", guitarID).
		Preload("FromStage").
		Preload("ToStage").
		Order("created_at ASC").
		Find(&transitions).Error
	return transitions, err
}

func (r *guitarRepository) SetCoverPhoto(ctx context.Context, id uuid.UUID, url *string) error {
	return r.db.WithContext(ctx).Model(&entity.Guitar{}).
		Where("id = ?", id).
		Update("cover_photo_url", url).Error
}

func (r *guitarRepository) AddPhotoCount(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).Model(&entity.Guitar{}).
		Where("id = ?", id).
		UpdateColumn("photo_count", gorm.Expr("GREATEST(photo_count + ?, 0)", delta)).Error
}
