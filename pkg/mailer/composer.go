package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

// Branding carries the portal identity rendered into every email
type Branding struct {
	AppName   string
	PortalURL string
	LogoURL   string
}

// Composer renders notification emails from the shared layout
type Composer struct {
	branding Branding
	layout   *template.Template
}

// NewComposer creates a composer with the given branding
func NewComposer(branding Branding) (*Composer, error) {
	layout, err := template.New("layout").Parse(layoutTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email layout: %w", err)
	}
	return &Composer{branding: branding, layout: layout}, nil
}

// Rendered is the output of composing one email
type Rendered struct {
	Subject  string
	HTMLBody string
	TextBody string
}

type layoutData struct {
	AppName    string
	LogoURL    string
	Title      string
	Body       template.HTML
	CTAURL     string
	CTALabel   string
	FooterNote string
}

func (c *Composer) render(title string, body template.HTML, ctaURL, ctaLabel string) (string, error) {
	data := layoutData{
		AppName:    c.branding.AppName,
		LogoURL:    c.branding.LogoURL,
		Title:      title,
		Body:       body,
		CTAURL:     ctaURL,
		CTALabel:   ctaLabel,
		FooterNote: "This email was sent by " + c.branding.AppName,
	}

	var buf bytes.Buffer
	if err := c.layout.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}

func paragraphs(lines ...string) template.HTML {
	var b strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		b.WriteString(`<p style="color: #4a5568; font-size: 16px; line-height: 1.6; margin: 0 0 20px 0;">`)
		b.WriteString(template.HTMLEscapeString(line))
		b.WriteString("</p>\n")
	}
	return template.HTML(b.String())
}

// StageChange composes the email sent to a client when their build moves
// to a new stage
func (c *Composer) StageChange(customerName, model, orderNumber, stageLabel, guitarID string) (*Rendered, error) {
	subject := fmt.Sprintf("Your %s has moved to %s", model, stageLabel)
	buildURL := fmt.Sprintf("%s/builds/%s", c.branding.PortalURL, guitarID)

	body := paragraphs(
		greeting(customerName),
		fmt.Sprintf("Good news: your %s (order %s) has entered the %s stage.", model, orderNumber, stageLabel),
		"Log in to the portal to see the latest notes and photos from the workshop.",
	)

	html, err := c.render("Build Progress Update", body, buildURL, "View Your Build")
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("%s\n\nYour %s (order %s) has entered the %s stage.\n\nFollow your build: %s\n",
		greeting(customerName), model, orderNumber, stageLabel, buildURL)

	return &Rendered{Subject: subject, HTMLBody: html, TextBody: text}, nil
}

// RunUpdate composes the broadcast email for a production run announcement
func (c *Composer) RunUpdate(runName, updateSubject, updateBody string) (*Rendered, error) {
	subject := fmt.Sprintf("%s: %s", runName, updateSubject)

	body := paragraphs(strings.Split(updateBody, "\n\n")...)

	html, err := c.render(updateSubject, body, c.branding.PortalURL, "Open the Portal")
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("%s\n\n%s\n\n%s\n", updateSubject, updateBody, c.branding.PortalURL)

	return &Rendered{Subject: subject, HTMLBody: html, TextBody: text}, nil
}

// CustomShopAck composes the confirmation sent to someone who submitted a
// custom shop request
func (c *Composer) CustomShopAck(name string) (*Rendered, error) {
	subject := "We received your custom shop request"

	body := paragraphs(
		greeting(name),
		"Thanks for your custom shop request. Our team reviews every submission and will get back to you within a few business days.",
	)

	html, err := c.render("Request Received", body, "", "")
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("%s\n\nThanks for your custom shop request. Our team will get back to you within a few business days.\n", greeting(name))

	return &Rendered{Subject: subject, HTMLBody: html, TextBody: text}, nil
}

// CustomShopStaff composes the internal notification for a new custom shop
// request
func (c *Composer) CustomShopStaff(name, email, summary, requestID string) (*Rendered, error) {
	subject := fmt.Sprintf("New custom shop request from %s", name)
	reviewURL := fmt.Sprintf("%s/custom-shop/%s", c.branding.PortalURL, requestID)

	body := paragraphs(
		fmt.Sprintf("%s (%s) submitted a new custom shop request.", name, email),
		summary,
	)

	html, err := c.render("New Custom Shop Request", body, reviewURL, "Review Request")
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("%s (%s) submitted a new custom shop request.\n\n%s\n\nReview: %s\n", name, email, summary, reviewURL)

	return &Rendered{Subject: subject, HTMLBody: html, TextBody: text}, nil
}

// InvoiceIssued composes the email sent to a client when an invoice is
// created for their build
func (c *Composer) InvoiceIssued(customerName, model, invoiceNo string, amount float64, memo string) (*Rendered, error) {
	subject := fmt.Sprintf("Invoice %s for your %s", invoiceNo, model)
	invoicesURL := c.branding.PortalURL + "/invoices"

	lines := []string{
		greeting(customerName),
		fmt.Sprintf("Invoice %s for $%.2f has been issued for your %s.", invoiceNo, amount, model),
	}
	if memo != "" {
		lines = append(lines, memo)
	}
	lines = append(lines, "You can view the invoice and payment details in the portal.")

	html, err := c.render("New Invoice", paragraphs(lines...), invoicesURL, "View Invoices")
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("%s\n\nInvoice %s for $%.2f has been issued for your %s.\n\n%s\n", greeting(customerName), invoiceNo, amount, model, invoicesURL)

	return &Rendered{Subject: subject, HTMLBody: html, TextBody: text}, nil
}

// Invite composes the account invitation email with a single-use setup link
func (c *Composer) Invite(name, email, token string) (*Rendered, error) {
	subject := fmt.Sprintf("You're invited to %s", c.branding.AppName)
	inviteURL := fmt.Sprintf("%s/accept-invite?token=%s&email=%s",
		c.branding.PortalURL, url.QueryEscape(token), url.QueryEscape(email))

	body := paragraphs(
		greeting(name),
		fmt.Sprintf("An account has been created for you on %s, where you can follow your build from first cut to final setup.", c.branding.AppName),
		"Click the button below to choose a password and activate your account. This link expires in 7 days.",
	)

	html, err := c.render("Activate Your Account", body, inviteURL, "Set Up Your Account")
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("%s\n\nAn account has been created for you on %s.\n\nActivate it here (expires in 7 days): %s\n", greeting(name), c.branding.AppName, inviteURL)

	return &Rendered{Subject: subject, HTMLBody: html, TextBody: text}, nil
}

// PasswordReset composes the password reset email
func (c *Composer) PasswordReset(email, token string) (*Rendered, error) {
	subject := fmt.Sprintf("Reset your %s password", c.branding.AppName)
	resetURL := fmt.Sprintf("%s/reset-password?token=%s&email=%s",
		c.branding.PortalURL, url.QueryEscape(token), url.QueryEscape(email))

	body := paragraphs(
		"Hello,",
		fmt.Sprintf("We received a request to reset the password for the account associated with %s.", email),
		"Click the button below to reset your password. This link will expire in 1 hour.",
		"If you didn't request this password reset, you can safely ignore this email.",
	)

	html, err := c.render("Reset Your Password", body, resetURL, "Reset Password")
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("We received a request to reset the password for %s.\n\nReset it here (expires in 1 hour): %s\n", email, resetURL)

	return &Rendered{Subject: subject, HTMLBody: html, TextBody: text}, nil
}

// Test composes the settings-page test email used to verify the provider
// configuration
func (c *Composer) Test(recipient string) (*Rendered, error) {
	subject := fmt.Sprintf("%s test email", c.branding.AppName)

	body := paragraphs(
		fmt.Sprintf("This is a test message from %s.", c.branding.AppName),
		"If you received this, your email settings are working.",
	)

	html, err := c.render("Test Email", body, "", "")
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("This is a test message from %s sent to %s. Your email settings are working.\n", c.branding.AppName, recipient)

	return &Rendered{Subject: subject, HTMLBody: html, TextBody: text}, nil
}

func greeting(name string) string {
	if name == "" {
		return "Hello,"
	}
	return fmt.Sprintf("Hi %s,", name)
}
