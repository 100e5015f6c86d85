package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Guitar represents one customer build order tracked through a run's stages.
// StageID is the current stage; the authoritative history lives in
// StageTransition rows written in the same transaction as each advance.
type Guitar struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	RunID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"run_id"`
	StageID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"stage_id"`
	ClientID      *uuid.UUID     `gorm:"type:uuid;index" json:"client_id,omitempty"`
	CustomerName  string         `gorm:"size:255" json:"customer_name"`
	CustomerEmail string         `gorm:"size:255" json:"customer_email"`
	OrderNumber   string         `gorm:"size:100;unique;not null" json:"order_number"`
	Model         string         `gorm:"size:255;not null" json:"model"`
	Finish        string         `gorm:"size:255" json:"finish"`
	Specs         SpecMap        `gorm:"type:jsonb" json:"specs,omitempty"`
	CoverPhotoURL *string        `gorm:"size:512" json:"cover_photo_url,omitempty"`
	PhotoCount    int            `gorm:"default:0" json:"photo_count"`
	Archived      bool           `gorm:"default:false;index" json:"archived"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Run         Run               `gorm:"foreignKey:RunID" json:"-"`
	Stage       RunStage          `gorm:"foreignKey:StageID" json:"stage,omitempty"`
	Client      *Client           `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Notes       []Note            `gorm:"foreignKey:GuitarID" json:"notes,omitempty"`
	Transitions []StageTransition `gorm:"foreignKey:GuitarID" json:"transitions,omitempty"`
}

// BeforeCreate generates a UUID before creating a new guitar
func (g *Guitar) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Guitar model
func (Guitar) TableName() string {
	return "guitars"
}

// StageTransition is an append-only record of a guitar moving between stages
type StageTransition struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	GuitarID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"guitar_id"`
	FromStageID *uuid.UUID `gorm:"type:uuid" json:"from_stage_id,omitempty"` // nil for the initial placement
	ToStageID   uuid.UUID  `gorm:"type:uuid;not null" json:"to_stage_id"`
	ActorID     uuid.UUID  `gorm:"type:uuid;not null" json:"actor_id"`
	NoteID      *uuid.UUID `gorm:"type:uuid" json:"note_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	// Relationships
	Guitar    Guitar    `gorm:"foreignKey:GuitarID" json:"-"`
	FromStage *RunStage `gorm:"foreignKey:FromStageID" json:"from_stage,omitempty"`
	ToStage   RunStage  `gorm:"foreignKey:ToStageID" json:"to_stage,omitempty"`
}

// BeforeCreate generates a UUID before creating a new transition
func (t *StageTransition) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the StageTransition model
func (StageTransition) TableName() string {
	return "stage_transitions"
}
