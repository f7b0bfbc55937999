// Package notify delivers issuance notifications to document subjects.
// It is a collaborator of the issuance flow, not part of it: handlers
// enqueue a notification after a successful issue, and delivery happens
// on background workers so mail latency never blocks a response.
package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-docs-api/pkg/config"
)

// DocumentIssued describes a notification about a freshly issued document.
type DocumentIssued struct {
	Kind             string
	StudentName      string
	StudentEmail     string
	InternshipTitle  string
	CompanyName      string
	DocumentURL      string
	VerificationCode string
}

// EmailSender sends issuance emails through SendGrid.
type EmailSender struct {
	client  *sendgrid.Client
	from    *mail.Email
	enabled bool
	logger  *zap.Logger
}

// NewEmailSender constructs the sender. With notifications disabled it
// logs instead of sending, which keeps development setups mail-free.
func NewEmailSender(cfg config.NotificationsConfig, logger *zap.Logger) *EmailSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailSender{
		client:  sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:    mail.NewEmail(cfg.FromName, cfg.FromEmail),
		enabled: cfg.Enabled && cfg.SendGridAPIKey != "",
		logger:  logger,
	}
}

// SendDocumentIssued delivers the notification email for one issuance.
func (s *EmailSender) SendDocumentIssued(ctx context.Context, msg DocumentIssued) error {
	if msg.StudentEmail == "" {
		return nil
	}
	if !s.enabled {
		s.logger.Info("notifications disabled, skipping email",
			zap.String("kind", msg.Kind),
			zap.String("recipient", msg.StudentEmail),
		)
		return nil
	}

	subject, body := composeDocumentIssued(msg)
	email := mail.NewSingleEmail(s.from, subject, mail.NewEmail(msg.StudentName, msg.StudentEmail), body, "")
	resp, err := s.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("send notification email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("send notification email: status %d", resp.StatusCode)
	}
	return nil
}

func composeDocumentIssued(msg DocumentIssued) (subject, body string) {
	switch msg.Kind {
	case "completion_certificate":
		subject = fmt.Sprintf("Your internship completion certificate from %s", msg.CompanyName)
		body = fmt.Sprintf(
			"Dear %s,\n\nCongratulations on completing your internship as %s at %s!\n\n"+
				"Your completion certificate is ready: %s\n\n"+
				"Anyone can confirm its authenticity with verification code %s.\n",
			msg.StudentName, msg.InternshipTitle, msg.CompanyName, msg.DocumentURL, msg.VerificationCode)
	default:
		subject = fmt.Sprintf("Your internship offer letter from %s", msg.CompanyName)
		body = fmt.Sprintf(
			"Dear %s,\n\nWe are excited to offer you the %s position at %s.\n\n"+
				"Your offer letter is ready: %s\n\n"+
				"Anyone can confirm its authenticity with verification code %s.\n",
			msg.StudentName, msg.InternshipTitle, msg.CompanyName, msg.DocumentURL, msg.VerificationCode)
	}
	return subject, body
}
