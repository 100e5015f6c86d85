package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InviteToken is a single-use token emailed to a newly provisioned user so
// they can set their own password. This replaces storing an initial password
// anywhere retrievable.
type InviteToken struct {
	ID        uint           `gorm:"primary_key" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Token     string         `gorm:"size:255;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time      `gorm:"not null" json:"expires_at"`
	Used      bool           `gorm:"default:false" json:"used"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName returns the table name for the InviteToken model
func (InviteToken) TableName() string {
	return "invite_tokens"
}

// IsValid checks whether the token is unused and unexpired
func (t *InviteToken) IsValid() bool {
	return !t.Used && time.Now().Before(t.ExpiresAt)
}
