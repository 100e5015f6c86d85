package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Invoice belongs to a client and is optionally linked to a guitar and the
// stage whose schedule raised it. Amounts are stored in cents; the paid total
// is derived from the append-only payment ledger.
type Invoice struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	ClientID       uuid.UUID          `gorm:"type:uuid;not null;index" json:"client_id"`
	GuitarID       *uuid.UUID         `gorm:"type:uuid;index" json:"guitar_id,omitempty"`
	TriggerStageID *uuid.UUID         `gorm:"type:uuid" json:"trigger_stage_id,omitempty"`
	InvoiceNo      string             `gorm:"size:100;unique;not null" json:"invoice_no"`
	Memo           string             `gorm:"size:255" json:"memo"`
	Amount         int64              `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Currency       string             `gorm:"size:10;default:'USD'" json:"currency"`
	Status         enum.InvoiceStatus `gorm:"default:0" json:"status"`
	IssuedAt       time.Time          `json:"issued_at"`
	DueAt          *time.Time         `json:"due_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	DeletedAt      gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	Client   Client    `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Guitar   *Guitar   `gorm:"foreignKey:GuitarID" json:"-"`
	Payments []Payment `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (i Invoice) MarshalJSON() ([]byte, error) {
	type Alias Invoice
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
		Paid   float64 `json:"paid"`
	}{
		Alias:  Alias(i),
		Amount: float64(i.Amount) / 100,
		Paid:   float64(i.PaidCents()) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// PaidCents returns the sum of the payment ledger. Payments must be loaded.
func (i *Invoice) PaidCents() int64 {
	var total int64
	for _, p := range i.Payments {
		total += p.Amount
	}
	return total
}

// IsCovered reports whether the ledger covers the invoice amount
func (i *Invoice) IsCovered() bool {
	return i.PaidCents() >= i.Amount
}

// Payment is one entry in an invoice's append-only payment ledger
type Payment struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Amount     int64      `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Method     string     `gorm:"size:50" json:"method"`
	Reference  string     `gorm:"size:255" json:"reference"`
	RecordedBy uuid.UUID  `gorm:"type:uuid" json:"recorded_by"`
	PaidAt     time.Time  `json:"paid_at"`
	CreatedAt  time.Time  `json:"created_at"`

	// Relationships
	Invoice Invoice `gorm:"foreignKey:InvoiceID" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (p Payment) MarshalJSON() ([]byte, error) {
	type Alias Payment
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(p),
		Amount: float64(p.Amount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
