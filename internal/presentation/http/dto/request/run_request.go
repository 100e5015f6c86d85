package request

import "time"

// StageRequest describes one stage in a run's pipeline. InvoiceAmount is in
// cents.
type StageRequest struct {
	Label             string  `json:"label" binding:"required,max=255"`
	ClientStatusLabel string  `json:"client_status_label" binding:"max=255"`
	InternalOnly      bool    `json:"internal_only"`
	RequiresNote      bool    `json:"requires_note"`
	RequiresPhoto     bool    `json:"requires_photo"`
	InvoiceAmount     *int64  `json:"invoice_amount"`
	InvoiceMemo       *string `json:"invoice_memo"`
}

// CreateRunRequest represents a create run request
type CreateRunRequest struct {
	Name            string              `json:"name" binding:"required,max=255"`
	FactoryID       *string             `json:"factory_id"`
	StartsAt        *time.Time          `json:"starts_at"`
	SpecConstraints map[string][]string `json:"spec_constraints"`
	Stages          []StageRequest      `json:"stages" binding:"required,min=1,dive"`
}

// UpdateRunRequest represents an update run request
type UpdateRunRequest struct {
	Name            *string             `json:"name"`
	FactoryID       *string             `json:"factory_id"`
	IsActive        *bool               `json:"is_active"`
	StartsAt        *time.Time          `json:"starts_at"`
	SpecConstraints map[string][]string `json:"spec_constraints"`
}

// UpdateStageRequest represents a stage update request
type UpdateStageRequest struct {
	Label             *string `json:"label"`
	ClientStatusLabel *string `json:"client_status_label"`
	InternalOnly      *bool   `json:"internal_only"`
	RequiresNote      *bool   `json:"requires_note"`
	RequiresPhoto     *bool   `json:"requires_photo"`
	InvoiceAmount     *int64  `json:"invoice_amount"`
	InvoiceMemo       *string `json:"invoice_memo"`
	ClearInvoice      bool    `json:"clear_invoice"`
}

// ReorderStagesRequest lists every stage of the run in its new order
type ReorderStagesRequest struct {
	StageIDs []string `json:"stage_ids" binding:"required,min=1"`
}

// PostRunUpdateRequest represents a run update broadcast request
type PostRunUpdateRequest struct {
	Subject string `json:"subject" binding:"required,max=255"`
	Body    string `json:"body" binding:"required"`
}
