// Package smtp implements mailer.Sender over a plain SMTP session with
// STARTTLS, building a multipart/alternative message from the text and HTML
// bodies.
package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/solprod/contact-api/pkg/mailer"
)

// Sender implements mailer.Sender over SMTP with STARTTLS.
type Sender struct {
	config Config
}

// New creates a new SMTP sender.
func New(cfg Config) *Sender {
	return &Sender{config: cfg}
}

// Send implements mailer.Sender. The whole session inherits the context
// deadline, so a hanging mail server cannot stall the caller past its
// timeout.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if !s.config.Configured() {
		return mailer.ErrNotConfigured
	}

	from := email.From
	if from == "" {
		from = mailer.Recipient("", s.config.Username)
	}

	msg, err := buildMessage(from, email)
	if err != nil {
		return fmt.Errorf("smtp: build message: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp: dial %s: %w", addr, err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("smtp: handshake: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
		return fmt.Errorf("smtp: starttls: %w", err)
	}

	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp: auth: %w", err)
	}

	if err := client.Mail(s.config.Username); err != nil {
		return fmt.Errorf("smtp: mail from: %w", err)
	}
	for _, rcpt := range email.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp: rcpt to: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp: data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp: write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp: close message: %w", err)
	}

	return client.Quit()
}

// buildMessage assembles headers and a multipart/alternative body with the
// plain-text part first, as mail clients prefer the last part they support.
func buildMessage(from string, email *mailer.Email) ([]byte, error) {
	var b strings.Builder
	var mw *multipart.Writer

	writeHeader := func(k, v string) {
		fmt.Fprintf(&b, "%s: %s\r\n", k, v)
	}

	writeHeader("From", from)
	writeHeader("To", strings.Join(email.To, ", "))
	if email.ReplyTo != "" {
		writeHeader("Reply-To", email.ReplyTo)
	}
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", email.Subject))
	writeHeader("MIME-Version", "1.0")

	mw = multipart.NewWriter(&b)
	writeHeader("Content-Type", `multipart/alternative; boundary="`+mw.Boundary()+`"`)
	b.WriteString("\r\n")

	parts := []struct {
		contentType string
		body        string
	}{
		{"text/plain; charset=utf-8", email.Text},
		{"text/html; charset=utf-8", email.HTML},
	}
	for _, p := range parts {
		if p.body == "" {
			continue
		}
		pw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type": {p.contentType},
		})
		if err != nil {
			return nil, err
		}
		if _, err := pw.Write([]byte(p.body)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	return []byte(b.String()), nil
}
