package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/pkg/pagination"
)

// GuitarFilterParams contains filtering parameters for guitar queries
type GuitarFilterParams struct {
	Pagination      *pagination.PaginationParams
	Search          string
	RunID           *uuid.UUID
	StageID         *uuid.UUID
	ClientID        *uuid.UUID
	IncludeArchived bool
	SortBy          string
	SortOrder       string
}

// GuitarCursorFilterParams contains cursor-based filtering for guitar queries
type GuitarCursorFilterParams struct {
	Cursor          *pagination.CursorParams
	Search          string
	RunID           *uuid.UUID
	StageID         *uuid.UUID
	ClientID        *uuid.UUID
	IncludeArchived bool
}

// StageAdvance bundles every write belonging to one stage transition. The
// repository persists all of it in a single database transaction: the guitar's
// stage pointer, the append-only transition record, the optional note, the
// invoice raised by the target stage's schedule, and the notification outbox
// rows. None of them exist unless all of them do.
type StageAdvance struct {
	Guitar     *entity.Guitar
	Transition *entity.StageTransition
	Note       *entity.Note
	Invoice    *entity.Invoice
	Emails     []entity.EmailOutbox
}

// GuitarRepository defines the interface for guitar data operations
type GuitarRepository interface {
	// Create persists a new guitar together with its initial placement
	// transition in one transaction.
	Create(ctx context.Context, guitar *entity.Guitar, placement *entity.StageTransition) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Guitar, error)
	GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Guitar, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*entity.Guitar, error)
	Update(ctx context.Context, guitar *entity.Guitar) error
	Archive(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *GuitarFilterParams) ([]entity.Guitar, int64, error)
	ListWithCursor(ctx context.Context, params *GuitarCursorFilterParams) ([]entity.Guitar, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]entity.Guitar, error)
	CountByRun(ctx context.Context, runID uuid.UUID) (int64, error)

	AdvanceStage(ctx context.Context, advance *StageAdvance) error
	ListTransitions(ctx context.Context, guitarID uuid.UUID) ([]entity.StageTransition, error)

	SetCoverPhoto(ctx context.Context, id uuid.UUID, url *string) error
	AddPhotoCount(ctx context.Context, id uuid.UUID, delta int) error
}
