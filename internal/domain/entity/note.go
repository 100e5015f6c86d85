package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Note is an append-only log entry attached to a guitar. StageID records the
// stage that was current when the note was written. Notes are never edited
// after creation except for photo removal.
type Note struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	GuitarID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"guitar_id"`
	StageID         uuid.UUID      `gorm:"type:uuid;not null" json:"stage_id"`
	AuthorID        uuid.UUID      `gorm:"type:uuid;not null" json:"author_id"`
	AuthorName      string         `gorm:"size:255" json:"author_name"`
	Message         string         `gorm:"type:text;not null" json:"message"`
	Type            enum.NoteType  `gorm:"default:0" json:"type"`
	VisibleToClient bool           `gorm:"default:false" json:"visible_to_client"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Guitar Guitar      `gorm:"foreignKey:GuitarID" json:"-"`
	Stage  RunStage    `gorm:"foreignKey:StageID" json:"stage,omitempty"`
	Photos []NotePhoto `gorm:"foreignKey:NoteID" json:"photos,omitempty"`
}

// BeforeCreate generates a UUID before creating a new note
func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Note model
func (Note) TableName() string {
	return "notes"
}

// NotePhoto is a photo attached to a note. ObjectKey is empty for external
// links pasted by staff; only owned objects are removed from storage on
// delete.
type NotePhoto struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	NoteID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"note_id"`
	URL          string         `gorm:"size:512;not null" json:"url"`
	ThumbnailURL *string        `gorm:"size:512" json:"thumbnail_url,omitempty"`
	ObjectKey    string         `gorm:"size:512" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Note Note `gorm:"foreignKey:NoteID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new note photo
func (p *NotePhoto) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the NotePhoto model
func (NotePhoto) TableName() string {
	return "note_photos"
}

// IsExternal reports whether the photo is a pasted external link rather than
// an object in our storage
func (p *NotePhoto) IsExternal() bool {
	return strings.TrimSpace(p.ObjectKey) == ""
}
