package request

// CreateGuitarRequest represents a create guitar request
type CreateGuitarRequest struct {
	RunID         string            `json:"run_id" binding:"required,uuid"`
	ClientID      *string           `json:"client_id"`
	CustomerName  string            `json:"customer_name" binding:"max=255"`
	CustomerEmail string            `json:"customer_email" binding:"omitempty,email"`
	Model         string            `json:"model" binding:"required,max=255"`
	Finish        string            `json:"finish" binding:"max=255"`
	Specs         map[string]string `json:"specs"`
}

// UpdateGuitarRequest represents an update guitar request
type UpdateGuitarRequest struct {
	ClientID      *string           `json:"client_id"`
	CustomerName  *string           `json:"customer_name"`
	CustomerEmail *string           `json:"customer_email"`
	Model         *string           `json:"model"`
	Finish        *string           `json:"finish"`
	Specs         map[string]string `json:"specs"`
}

// AdvanceStageRequest represents a stage advance request. The note fields
// are required when the target stage demands them.
type AdvanceStageRequest struct {
	StageID         string   `json:"stage_id" binding:"required,uuid"`
	Note            string   `json:"note"`
	NoteType        string   `json:"note_type"`
	VisibleToClient bool     `json:"visible_to_client"`
	PhotoURLs       []string `json:"photo_urls"`
}
