// Package mailer sends email through a provider-agnostic Sender interface.
// Adapters live in subpackages: resend (HTTP delivery API) and smtp
// (classic STARTTLS session).
package mailer

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("email must have at least one recipient")

	// ErrNoSubject indicates no subject was provided.
	ErrNoSubject = errors.New("email must have a subject")

	// ErrNoContent indicates the email has neither an HTML nor a text body.
	ErrNoContent = errors.New("email must have content")

	// ErrSendFailed indicates the provider failed to deliver the email.
	ErrSendFailed = errors.New("failed to send email")

	// ErrNotConfigured indicates the provider is missing required credentials.
	// Operators see this distinctly in logs; callers only see a send failure.
	ErrNotConfigured = errors.New("mail transport is not configured")
)

// Email represents a fully-prepared message ready for sending.
type Email struct {
	Subject string   // Email subject
	HTML    string   // HTML body
	Text    string   // Plain text alternative
	From    string   // Override default sender (if provider allows)
	ReplyTo string   // Reply-to address
	To      []string // Recipients (at least one required)
}

// Sender is the minimal interface email providers implement. It accepts a
// fully-prepared Email and handles the actual delivery.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Recipient formats a name and address into RFC 5322 form.
// Returns "Name <email>" if a name is provided, otherwise just the address.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Mailer fronts a Sender with pre-send validation and a default From address.
type Mailer struct {
	sender Sender
	from   string
}

// New creates a Mailer that falls back to the given From address when an
// email does not set its own.
func New(sender Sender, from string) *Mailer {
	return &Mailer{sender: sender, from: from}
}

// Send validates the email and hands it to the provider. Provider errors are
// joined with ErrSendFailed so callers can classify without inspecting
// provider internals.
func (m *Mailer) Send(ctx context.Context, email *Email) error {
	if len(email.To) == 0 {
		return ErrNoRecipient
	}
	if email.Subject == "" {
		return ErrNoSubject
	}
	if email.HTML == "" && email.Text == "" {
		return ErrNoContent
	}

	// Resolve the default From on a copy so the caller's Email stays untouched.
	resolved := *email
	if resolved.From == "" {
		resolved.From = m.from
	}

	if err := m.sender.Send(ctx, &resolved); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}
