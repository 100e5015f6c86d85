package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Factory represents a workshop or contract factory that builds runs
type Factory struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Location     *string        `gorm:"size:255" json:"location,omitempty"`
	ContactName  *string        `gorm:"size:255" json:"contact_name,omitempty"`
	ContactEmail *string        `gorm:"size:255" json:"contact_email,omitempty"`
	ContactPhone *string        `gorm:"size:50" json:"contact_phone,omitempty"`
	Notes        *string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Runs []Run `gorm:"foreignKey:FactoryID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new factory
func (f *Factory) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Factory model
func (Factory) TableName() string {
	return "factories"
}
