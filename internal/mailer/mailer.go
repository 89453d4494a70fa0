package mailer

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"festive/internal/domain/inquiry"
)

const (
	FromName               = "Festive Feast Catering"
	maxRetires             = 3
	ContactInquiryTemplate = "contact_inquiry.tmpl"
	notSpecified           = "Not specified"
	noItemsSelected        = "No items selected"
)

//go:embed "templates"
var FS embed.FS

var (
	ErrInvalidForm     = errors.New("invalid form data")
	ErrMisconfigured   = errors.New("email service configuration error")
	ErrTemplateInvalid = errors.New("email template validation failed")
	ErrGmailAuth       = errors.New("gmail account connection expired")
	ErrThrottled       = errors.New("too many messages, try again shortly")
)

// StatusError is a provider failure that does not map to a known cause.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("email provider returned http=%d body=%s", e.Status, e.Body)
}

// Client delivers a contact-form inquiry and returns the provider status.
type Client interface {
	Send(ctx context.Context, q inquiry.Inquiry) (int, error)
}

// templateParams are the variables the contact template expects. Optional
// fields the visitor left blank read "Not specified".
func templateParams(q inquiry.Inquiry) map[string]string {
	return map[string]string{
		"from_name":      q.Name,
		"from_email":     q.Email,
		"phone":          q.Phone,
		"event_date":     orDefault(q.EventDate, notSpecified),
		"guest_count":    orDefault(q.GuestCount, notSpecified),
		"event_type":     orDefault(q.EventType, notSpecified),
		"message":        q.Message,
		"selected_items": orDefault(q.SelectedItems, noItemsSelected),
		"reply_to":       q.Email,
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
