package email

import (
	"context"
	"fmt"
	"time"

	"salesrep_portal/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender delivers the rendered templates over SMTP via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

func (s *SMTPSender) buildMessage(toEmail, subject, htmlContent string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)
	return msg, nil
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg, err := s.buildMessage(toEmail, subject, htmlContent)
	if err != nil {
		return err
	}

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}

	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) SendLeadAssignedEmail(ctx context.Context, toEmail string, mail LeadMail) error {
	content, err := renderEmailTemplate("lead_assigned.html", leadData(mail, "New lead assigned", "Open lead"))
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectLeadAssignedFmt, mail.Company), content)
}

func (s *SMTPSender) SendLeadExpiringSoonEmail(ctx context.Context, toEmail string, mail LeadMail) error {
	content, err := renderEmailTemplate("lead_expiring_soon.html", leadData(mail, "Lead expiring soon", "Open lead"))
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectLeadExpiringSoonFmt, mail.Company, mail.ExpiryDate.Format(dateLayout)), content)
}

func (s *SMTPSender) SendLeadExpiredEmail(ctx context.Context, toEmail string, mail LeadMail) error {
	content, err := renderEmailTemplate("lead_expired.html", leadData(mail, "Lead expired", "View lead"))
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectLeadExpiredFmt, mail.Company), content)
}

func leadData(mail LeadMail, heading, ctaLabel string) leadEmailData {
	return leadEmailData{
		baseEmailData: baseEmailData{
			Title:    heading,
			Heading:  heading,
			CTALabel: ctaLabel,
			CTAURL:   mail.LeadURL,
		},
		RecipientName: mail.RecipientName,
		Company:       mail.Company,
		ExpiryDate:    mail.ExpiryDate.Format(dateLayout),
	}
}
