package handler

import (
	"github.com/fretline/buildtrack-api/internal/application/service"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
	"github.com/fretline/buildtrack-api/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
)

// SettingsHandler handles app settings HTTP requests
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// Get returns the settings singleton
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settings retrieved successfully", settings)
}

// Update merges the given fields into the settings singleton
func (h *SettingsHandler) Update(c *gin.Context) {
	var req struct {
		CompanyName *string `json:"company_name"`
		LogoURL     *string `json:"logo_url"`
		PortalURL   *string `json:"portal_url"`

		Timezone   *string `json:"timezone"`
		Currency   *string `json:"currency"`
		DateFormat *string `json:"date_format"`

		FromName   *string `json:"from_name"`
		FromEmail  *string `json:"from_email" binding:"omitempty,email"`
		CCEmail    *string `json:"cc_email"`
		StaffInbox *string `json:"staff_inbox" binding:"omitempty,email"`
		ReplyTo    *string `json:"reply_to"`

		StageChangeEmails *bool `json:"stage_change_emails"`
		RunUpdateEmails   *bool `json:"run_update_emails"`
		InvoiceEmails     *bool `json:"invoice_emails"`
		SMSNotifications  *bool `json:"sms_notifications"`

		ClientOnboarding *bool `json:"client_onboarding"`
		MaintenanceMode  *bool `json:"maintenance_mode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	settings, err := h.settingsService.UpdateSettings(c.Request.Context(), &service.UpdateSettingsInput{
		CompanyName:       req.CompanyName,
		LogoURL:           req.LogoURL,
		PortalURL:         req.PortalURL,
		Timezone:          req.Timezone,
		Currency:          req.Currency,
		DateFormat:        req.DateFormat,
		FromName:          req.FromName,
		FromEmail:         req.FromEmail,
		CCEmail:           req.CCEmail,
		StaffInbox:        req.StaffInbox,
		ReplyTo:           req.ReplyTo,
		StageChangeEmails: req.StageChangeEmails,
		RunUpdateEmails:   req.RunUpdateEmails,
		InvoiceEmails:     req.InvoiceEmails,
		SMSNotifications:  req.SMSNotifications,
		ClientOnboarding:  req.ClientOnboarding,
		MaintenanceMode:   req.MaintenanceMode,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settings updated successfully", settings)
}

// ListEmailLog returns the outbox delivery log
func (h *SettingsHandler) ListEmailLog(c *gin.Context) {
	params := GetPaginationParams(c)

	var status *enum.OutboxStatus
	if statusStr := c.Query("status"); statusStr != "" {
		var s enum.OutboxStatus
		switch statusStr {
		case "pending":
			s = enum.OutboxStatusPending
		case "sent":
			s = enum.OutboxStatusSent
		case "failed":
			s = enum.OutboxStatusFailed
		default:
			response.BadRequest(c, "Invalid status filter")
			return
		}
		status = &s
	}

	result, err := h.settingsService.ListEmailLog(c.Request.Context(), params, status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Email log retrieved successfully", result)
}

// SendTestEmail queues a test email to verify delivery
func (h *SettingsHandler) SendTestEmail(c *gin.Context) {
	var req struct {
		Recipient string `json:"recipient" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.settingsService.SendTestEmail(c.Request.Context(), req.Recipient); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Test email queued", nil)
}
