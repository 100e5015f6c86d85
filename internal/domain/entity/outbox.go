package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
)

// Email kinds written to the outbox.
const (
	EmailKindStageChange   = "stage_change"
	EmailKindRunUpdate     = "run_update"
	EmailKindCustomShop    = "custom_shop"
	EmailKindInvoice       = "invoice"
	EmailKindInvite        = "invite"
	EmailKindPasswordReset = "password_reset"
	EmailKindTest          = "test"
)

// EmailOutbox is a transactional outbox row. It is inserted in the same
// database transaction as the domain write that caused it and drained by the
// background dispatcher, so a committed domain change implies an eventual
// send attempt and an uncommitted one implies none.
type EmailOutbox struct {
	ID        uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	Kind      string            `gorm:"size:50;not null;index" json:"kind"`
	Recipient string            `gorm:"size:255;not null" json:"recipient"`
	CC        string            `gorm:"size:255" json:"cc,omitempty"`
	Subject   string            `gorm:"size:512;not null" json:"subject"`
	HTMLBody  string            `gorm:"type:text" json:"-"`
	TextBody  string            `gorm:"type:text" json:"-"`
	SMSTo     string            `gorm:"size:50" json:"sms_to,omitempty"`
	SMSBody   string            `gorm:"size:512" json:"-"`
	Status    enum.OutboxStatus `gorm:"default:0;index" json:"status"`
	Attempts  int               `gorm:"default:0" json:"attempts"`
	LastError *string           `gorm:"type:text" json:"last_error,omitempty"`
	LockedAt  *time.Time        `gorm:"index" json:"-"`
	LockedBy  *string           `gorm:"size:100" json:"-"`
	SentAt    *time.Time        `json:"sent_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// TableName returns the table name for the EmailOutbox model
func (EmailOutbox) TableName() string {
	return "email_outbox"
}

// EnsureID assigns the primary key when missing. Kept separate from a gorm
// hook so rows built in tests behave the same as rows created inside
// repository transactions.
func (e *EmailOutbox) EnsureID() {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
}

// WantsSMS reports whether the row also carries an SMS payload
func (e *EmailOutbox) WantsSMS() bool {
	return e.SMSTo != "" && e.SMSBody != ""
}
