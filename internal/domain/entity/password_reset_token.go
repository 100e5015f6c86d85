package entity

import (
	"time"

	"gorm.io/gorm"
)

// PasswordResetToken stores single-use password reset tokens
type PasswordResetToken struct {
	ID        uint           `gorm:"primary_key" json:"id"`
	Email     string         `gorm:"size:255;not null;index" json:"email"`
	Token     string         `gorm:"size:255;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time      `gorm:"not null" json:"expires_at"`
	Used      bool           `gorm:"default:false" json:"used"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for the PasswordResetToken model
func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

// IsValid checks whether the token is unused and unexpired
func (t *PasswordResetToken) IsValid() bool {
	return !t.Used && time.Now().Before(t.ExpiresAt)
}
