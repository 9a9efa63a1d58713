// Package mailer wraps SMTP delivery behind a context-aware Sender.
package mailer

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/praesidion/wpbr-intake/pkg/config"
)

// Attachment points at a staged file and the name the recipient should see.
type Attachment struct {
	Path string
	Name string
}

// Message is one outbound mail. HTML is optional; when set it is sent as the
// alternative part next to the plain-text body. Inline files are embedded
// with a Content-ID equal to their Name so the HTML can reference them as
// cid: URLs.
type Message struct {
	To          []string
	Bcc         []string
	ReplyTo     string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
	Inline      []Attachment
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPSender sends via a single SMTP account.
type SMTPSender struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
	timeout  time.Duration
}

// NewSMTPSender builds a sender from the SMTP configuration.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SMTPSender{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:     cfg.From,
		fromName: cfg.FromName,
		timeout:  timeout,
	}
}

// Send delivers the message, bounded by the configured timeout and the
// caller's context. gomail dials per message, so a hung server cannot wedge
// the calling request beyond the deadline.
func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", msg.To...)
	if len(msg.Bcc) > 0 {
		m.SetHeader("Bcc", msg.Bcc...)
	}
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}
	for _, a := range msg.Attachments {
		m.Attach(a.Path, gomail.Rename(a.Name))
	}
	for _, a := range msg.Inline {
		m.Embed(a.Path, gomail.Rename(a.Name))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send: %w", ctx.Err())
	}
}
