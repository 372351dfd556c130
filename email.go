package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/go-gomail/gomail"
)

// ---------------------------------------------------------------------------
// Email
// ---------------------------------------------------------------------------

// Attachment is an in-memory file attached to an email.
type Attachment struct {
	Filename string
	Data     []byte
}

// newMessage builds the email; recipients must not be empty.
func newMessage(cfg *Config, to []string, subject, body string, attachments ...Attachment) (*gomail.Message, error) {
	if cfg.Email.From == "" {
		return nil, fmt.Errorf("email.from is not configured")
	}
	if len(to) == 0 {
		return nil, fmt.Errorf("no recipients")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", cfg.Email.From)
	msg.SetHeader("To", to...)
	if cfg.Email.To != "" && !slices.Contains(to, cfg.Email.To) {
		msg.SetHeader("Bcc", cfg.Email.To)
	}
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	for _, a := range attachments {
		data := a.Data
		msg.Attach(a.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}
	return msg, nil
}

// sendEmail sends the generated PDFs via SMTP.
func sendEmail(cfg *Config, to []string, subject, body string, attachments ...Attachment) error {
	msg, err := newMessage(cfg, to, subject, body, attachments...)
	if err != nil {
		return err
	}
	dialer := gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
