// Package email renders and delivers the lead notification mails.
package email

import (
	"context"
	"time"
)

// LeadMail carries what every lead notification shows.
type LeadMail struct {
	RecipientName string
	Company       string
	ExpiryDate    time.Time
	LeadURL       string
}

type Sender interface {
	SendLeadAssignedEmail(ctx context.Context, toEmail string, mail LeadMail) error
	SendLeadExpiringSoonEmail(ctx context.Context, toEmail string, mail LeadMail) error
	SendLeadExpiredEmail(ctx context.Context, toEmail string, mail LeadMail) error
}

// NoopSender drops every mail. It is used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendLeadAssignedEmail(context.Context, string, LeadMail) error {
	return nil
}

func (NoopSender) SendLeadExpiringSoonEmail(context.Context, string, LeadMail) error {
	return nil
}

func (NoopSender) SendLeadExpiredEmail(context.Context, string, LeadMail) error {
	return nil
}

var (
	_ Sender = NoopSender{}
	_ Sender = (*SMTPSender)(nil)
)
