package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppSettings is the singleton configuration document for the portal.
// Exactly one row exists; the settings service creates it on first read.
type AppSettings struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Branding
	CompanyName string `gorm:"size:255;default:'Fretline Guitars'" json:"company_name"`
	LogoURL     string `gorm:"size:512" json:"logo_url"`
	PortalURL   string `gorm:"size:512" json:"portal_url"`

	// General
	Timezone   string `gorm:"size:50;default:'Australia/Perth'" json:"timezone"`
	Currency   string `gorm:"size:10;default:'USD'" json:"currency"`
	DateFormat string `gorm:"size:20;default:'DD/MM/YYYY'" json:"date_format"`

	// Email
	FromName    string `gorm:"size:255" json:"from_name"`
	FromEmail   string `gorm:"size:255" json:"from_email"`
	CCEmail     string `gorm:"size:255" json:"cc_email"`
	StaffInbox  string `gorm:"size:255" json:"staff_inbox"`
	ReplyTo     string `gorm:"size:255" json:"reply_to"`

	// Notifications
	StageChangeEmails  bool `gorm:"default:true" json:"stage_change_emails"`
	RunUpdateEmails    bool `gorm:"default:true" json:"run_update_emails"`
	InvoiceEmails      bool `gorm:"default:true" json:"invoice_emails"`
	SMSNotifications   bool `gorm:"default:false" json:"sms_notifications"`

	// System
	ClientOnboarding bool `gorm:"default:true" json:"client_onboarding"`
	MaintenanceMode  bool `gorm:"default:false" json:"maintenance_mode"`
}

// BeforeCreate generates a UUID before creating settings
func (s *AppSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the AppSettings model
func (AppSettings) TableName() string {
	return "app_settings"
}
