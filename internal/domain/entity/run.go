package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Run represents a production batch of guitars sharing a stage pipeline
type Run struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name            string          `gorm:"size:255;not null" json:"name"`
	FactoryID       *uuid.UUID      `gorm:"type:uuid;index" json:"factory_id,omitempty"`
	IsActive        bool            `gorm:"default:true" json:"is_active"`
	Archived        bool            `gorm:"default:false;index" json:"archived"`
	StartsAt        *time.Time      `json:"starts_at,omitempty"`
	SpecConstraints SpecConstraints `gorm:"type:jsonb" json:"spec_constraints,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Factory *Factory   `gorm:"foreignKey:FactoryID" json:"factory,omitempty"`
	Stages  []RunStage `gorm:"foreignKey:RunID" json:"stages,omitempty"`
	Guitars []Guitar   `gorm:"foreignKey:RunID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new run
func (r *Run) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Run model
func (Run) TableName() string {
	return "runs"
}

// FirstStage returns the stage with the minimum order, or nil when the run
// has no stages. Stages must be loaded.
func (r *Run) FirstStage() *RunStage {
	var first *RunStage
	for i := range r.Stages {
		if first == nil || r.Stages[i].Order < first.Order {
			first = &r.Stages[i]
		}
	}
	return first
}

// StageByID returns the loaded stage with the given ID, or nil
func (r *Run) StageByID(stageID uuid.UUID) *RunStage {
	for i := range r.Stages {
		if r.Stages[i].ID == stageID {
			return &r.Stages[i]
		}
	}
	return nil
}

// RunStage represents one named step in a run's ordered build pipeline.
// Order values within a run are unique and dense from 0.
type RunStage struct {
	ID                uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	RunID             uuid.UUID      `gorm:"type:uuid;not null;index:idx_run_stage_order,unique" json:"run_id"`
	Label             string         `gorm:"size:255;not null" json:"label"`
	ClientStatusLabel string         `gorm:"size:255" json:"client_status_label"`
	Order             int            `gorm:"column:stage_order;not null;index:idx_run_stage_order,unique" json:"order"`
	InternalOnly      bool           `gorm:"default:false" json:"internal_only"`
	RequiresNote      bool           `gorm:"default:false" json:"requires_note"`
	RequiresPhoto     bool           `gorm:"default:false" json:"requires_photo"`
	InvoiceAmount     *int64         `json:"-"` // Stored in cents; nil when the stage raises no invoice
	InvoiceMemo       *string        `gorm:"size:255" json:"invoice_memo,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Run Run `gorm:"foreignKey:RunID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new stage
func (s *RunStage) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the RunStage model
func (RunStage) TableName() string {
	return "run_stages"
}

// SchedulesInvoice reports whether advancing onto this stage raises an invoice
func (s *RunStage) SchedulesInvoice() bool {
	return s.InvoiceAmount != nil && *s.InvoiceAmount > 0
}

// DisplayLabel returns the label shown to clients, falling back to the
// internal label when no client-facing label is set.
func (s *RunStage) DisplayLabel() string {
	if s.ClientStatusLabel != "" {
		return s.ClientStatusLabel
	}
	return s.Label
}

// RunUpdate represents a broadcast message posted to every client with an
// active build in the run
type RunUpdate struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	RunID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"run_id"`
	AuthorID   uuid.UUID      `gorm:"type:uuid;not null" json:"author_id"`
	Subject    string         `gorm:"size:255;not null" json:"subject"`
	Body       string         `gorm:"type:text;not null" json:"body"`
	Recipients int            `gorm:"default:0" json:"recipients"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Run    Run  `gorm:"foreignKey:RunID" json:"-"`
	Author User `gorm:"foreignKey:AuthorID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new run update
func (u *RunUpdate) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the RunUpdate model
func (RunUpdate) TableName() string {
	return "run_updates"
}
