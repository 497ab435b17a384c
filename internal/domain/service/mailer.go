package service

import "context"

// Mailer defines the interface for transactional email delivery.
type Mailer interface {
	// Send delivers one HTML email to a single recipient.
	Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error
}
