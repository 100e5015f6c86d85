package handler

import (
	"time"

	"github.com/fretline/buildtrack-api/internal/application/service"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
	"github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler handles invoicing HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Create raises a manual invoice. Amount is in cents.
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req struct {
		ClientID string     `json:"client_id" binding:"required,uuid"`
		GuitarID *string    `json:"guitar_id"`
		Amount   int64      `json:"amount" binding:"required"`
		Memo     string     `json:"memo" binding:"max=255"`
		DueAt    *time.Time `json:"due_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		response.BadRequest(c, "Invalid client ID")
		return
	}

	input := &service.CreateInvoiceInput{
		ClientID: clientID,
		Amount:   req.Amount,
		Memo:     req.Memo,
		DueAt:    req.DueAt,
	}

	if req.GuitarID != nil {
		guitarID, err := uuid.Parse(*req.GuitarID)
		if err != nil {
			response.BadRequest(c, "Invalid guitar ID")
			return
		}
		input.GuitarID = &guitarID
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created successfully", invoice)
}

// List handles listing invoices with filters
func (h *InvoiceHandler) List(c *gin.Context) {
	params := &repository.InvoiceFilterParams{
		Pagination: GetPaginationParams(c),
	}

	if clientIDStr := c.Query("client_id"); clientIDStr != "" {
		clientID, err := uuid.Parse(clientIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid client ID")
			return
		}
		params.ClientID = &clientID
	}
	if guitarIDStr := c.Query("guitar_id"); guitarIDStr != "" {
		guitarID, err := uuid.Parse(guitarIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid guitar ID")
			return
		}
		params.GuitarID = &guitarID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		var status enum.InvoiceStatus
		switch statusStr {
		case "open":
			status = enum.InvoiceStatusOpen
		case "partial":
			status = enum.InvoiceStatusPartial
		case "paid":
			status = enum.InvoiceStatusPaid
		case "void":
			status = enum.InvoiceStatusVoid
		default:
			response.BadRequest(c, "Invalid status filter")
			return
		}
		params.Status = &status
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Invoices retrieved successfully", result)
}

// Get handles retrieving an invoice with its payment ledger
func (h *InvoiceHandler) Get(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), *id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// RecordPayment appends a payment to the invoice's ledger. Amount is in
// cents.
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		Amount    int64      `json:"amount" binding:"required"`
		Method    string     `json:"method" binding:"max=50"`
		Reference string     `json:"reference" binding:"max=255"`
		PaidAt    *time.Time `json:"paid_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	invoice, err := h.invoiceService.RecordPayment(c.Request.Context(), &service.RecordPaymentInput{
		InvoiceID:  *id,
		Amount:     req.Amount,
		Method:     req.Method,
		Reference:  req.Reference,
		RecordedBy: *userID,
		PaidAt:     req.PaidAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment recorded successfully", invoice)
}

// Void handles voiding an invoice with no payments
func (h *InvoiceHandler) Void(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.VoidInvoice(c.Request.Context(), *id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice voided successfully", invoice)
}
