package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
	"gorm.io/gorm"
)

// CustomShopRequest is a one-off build enquiry submitted by a prospective or
// existing client. Creating one queues two emails: an acknowledgement to the
// requester and a notification to the staff inbox.
type CustomShopRequest struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	ClientID       *uuid.UUID         `gorm:"type:uuid;index" json:"client_id,omitempty"`
	RequesterName  string             `gorm:"size:255;not null" json:"requester_name"`
	RequesterEmail string             `gorm:"size:255;not null" json:"requester_email"`
	Model          string             `gorm:"size:255" json:"model"`
	Specs          SpecMap            `gorm:"type:jsonb" json:"specs,omitempty"`
	Message        string             `gorm:"type:text" json:"message"`
	Status         enum.RequestStatus `gorm:"default:0" json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	DeletedAt      gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	Client *Client `gorm:"foreignKey:ClientID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new request
func (r *CustomShopRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CustomShopRequest model
func (CustomShopRequest) TableName() string {
	return "custom_shop_requests"
}
