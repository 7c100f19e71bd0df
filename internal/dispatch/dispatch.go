// Package dispatch orchestrates one submission end to end: rate check,
// validation, formatting, delivery. Every request terminates in exactly one
// of the four outcome statuses; nothing escapes the pipeline as a raw error.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/solprod/contact-api/internal/notify"
	"github.com/solprod/contact-api/internal/submission"
	"github.com/solprod/contact-api/pkg/mailer"
	"github.com/solprod/contact-api/pkg/ratelimit"
)

// Status is the terminal state of one dispatch.
type Status int

const (
	StatusDelivered Status = iota
	StatusRejected
	StatusValidationFailed
	StatusDeliveryFailed
)

// Result is the uniform outcome handed back to the HTTP layer.
type Result struct {
	Status     Status
	ID         string                      // correlation id, also logged with the delivery attempt
	RetryAfter time.Duration               // set when Status is StatusRejected
	Validation *submission.ValidationError // set when Status is StatusValidationFailed
	Err        error                       // set when Status is StatusDeliveryFailed; never shown to callers
}

const defaultSendTimeout = 15 * time.Second

// Dispatcher runs the pipeline. Delivery is synchronous: the caller is only
// acknowledged after the delivery attempt, bounded by the send timeout so a
// hanging mail endpoint cannot stall request handling indefinitely.
type Dispatcher struct {
	limiter   ratelimit.Limiter
	formatter *notify.Formatter
	mail      *mailer.Mailer
	log       *slog.Logger
	timeout   time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSendTimeout bounds the delivery attempt.
func WithSendTimeout(d time.Duration) Option {
	return func(dp *Dispatcher) {
		if d > 0 {
			dp.timeout = d
		}
	}
}

// New creates a Dispatcher.
func New(limiter ratelimit.Limiter, formatter *notify.Formatter, mail *mailer.Mailer, log *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		limiter:   limiter,
		formatter: formatter,
		mail:      mail,
		log:       log,
		timeout:   defaultSendTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch admits the client, builds the submission via parse, formats it and
// delivers the notification. parse returns *submission.ValidationError on
// invalid input.
func (d *Dispatcher) Dispatch(ctx context.Context, endpoint, client string, parse func() (submission.Submission, error)) Result {
	id := uuid.NewString()

	dec, err := d.limiter.Admit(ctx, endpoint, client)
	switch {
	case err != nil:
		// Fail open: an unavailable limiter store must not take the whole
		// form offline. The miss is logged for operators.
		d.log.WarnContext(ctx, "rate limiter unavailable, admitting request",
			slog.String("dispatch_id", id),
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
	case !dec.Allowed:
		d.log.InfoContext(ctx, "submission rejected by rate limit",
			slog.String("dispatch_id", id),
			slog.String("endpoint", endpoint),
			slog.String("client", client),
			slog.Duration("retry_after", dec.RetryAfter))
		return Result{Status: StatusRejected, ID: id, RetryAfter: dec.RetryAfter}
	}

	sub, err := parse()
	if err != nil {
		var verr *submission.ValidationError
		if !errors.As(err, &verr) {
			verr = &submission.ValidationError{Fields: []submission.FieldError{
				{Field: "body", Reason: "Invalid submission"},
			}}
		}
		return Result{Status: StatusValidationFailed, ID: id, Validation: verr}
	}

	n := d.formatter.Format(sub)

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	email := &mailer.Email{
		To:      []string{n.Recipient},
		Subject: n.Subject,
		HTML:    n.RichBody,
		Text:    n.PlainBody,
		ReplyTo: n.ReplyTo,
	}
	if err := d.mail.Send(sendCtx, email); err != nil {
		// Full detail stays server-side; callers get a generic retryable error.
		// Missing transport configuration logs under its own message so
		// operators can tell it apart from an unreachable mail server.
		msg := "notification delivery failed"
		if errors.Is(err, mailer.ErrNotConfigured) {
			msg = "notification dropped: mail transport not configured"
		}
		d.log.ErrorContext(ctx, msg,
			slog.String("dispatch_id", id),
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return Result{Status: StatusDeliveryFailed, ID: id, Err: err}
	}

	d.log.InfoContext(ctx, "notification delivered",
		slog.String("dispatch_id", id),
		slog.String("endpoint", endpoint),
		slog.String("subject", n.Subject))
	return Result{Status: StatusDelivered, ID: id}
}
