// Package mail implements transactional email delivery through the Brevo API.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"savoro/config"
	"savoro/internal/domain/service"
	"savoro/internal/errors"
)

const brevoAPIURL = "https://api.brevo.com/v3/smtp/email"

// brevoMailer sends transactional email through the Brevo HTTP API.
type brevoMailer struct {
	apiKey     string
	fromEmail  string
	fromName   string
	httpClient *http.Client
}

// NewBrevoMailer is the constructor for brevoMailer.
func NewBrevoMailer(cfg *config.Config) (service.Mailer, error) {
	if cfg.Mail == nil || cfg.Mail.APIKey == "" || cfg.Mail.FromEmail == "" {
		return nil, errors.New("mail configuration must provide apiKey and fromEmail")
	}

	return &brevoMailer{
		apiKey:     cfg.Mail.APIKey,
		fromEmail:  cfg.Mail.FromEmail,
		fromName:   cfg.Mail.FromName,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// sendEmailReq defines the structure for a Brevo send email request.
type sendEmailReq struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

// Send delivers one HTML email to a single recipient.
func (m *brevoMailer) Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error {
	if toEmail == "" || subject == "" || htmlBody == "" {
		return errors.New("recipient, subject and body must not be empty")
	}

	recipient := map[string]string{"email": toEmail}
	if toName != "" {
		recipient["name"] = toName
	}

	body, err := json.Marshal(sendEmailReq{
		Sender:      map[string]string{"email": m.fromEmail, "name": m.fromName},
		To:          []map[string]string{recipient},
		Subject:     subject,
		HTMLContent: htmlBody,
	})
	if err != nil {
		return errors.Wrap(err, "marshal email request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPIURL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "create brevo request")
	}
	req.Header.Set("api-key", m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "send brevo request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return errors.Errorf("brevo API error: status %d, body: %s", resp.StatusCode, string(detail))
	}

	return nil
}
