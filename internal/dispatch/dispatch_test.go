package dispatch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solprod/contact-api/internal/dispatch"
	"github.com/solprod/contact-api/internal/notify"
	"github.com/solprod/contact-api/internal/submission"
	"github.com/solprod/contact-api/pkg/logger"
	"github.com/solprod/contact-api/pkg/mailer"
	"github.com/solprod/contact-api/pkg/ratelimit"
)

// stubLimiter returns a fixed decision or error.
type stubLimiter struct {
	decision ratelimit.Decision
	err      error
}

func (l *stubLimiter) Admit(context.Context, string, string) (ratelimit.Decision, error) {
	return l.decision, l.err
}

// captureSender records the delivered email and its context deadline.
type captureSender struct {
	last        *mailer.Email
	hadDeadline bool
	err         error
}

func (s *captureSender) Send(ctx context.Context, email *mailer.Email) error {
	s.last = email
	_, s.hadDeadline = ctx.Deadline()
	return s.err
}

func validParse() (submission.Submission, error) {
	return submission.NewDiscussProject(submission.DiscussProjectForm{
		Name:    "Jo",
		Email:   "jo@x.com",
		Phone:   "1234567890",
		Comment: "Hello there, please call",
	})
}

func newDispatcher(limiter ratelimit.Limiter, sender mailer.Sender, opts ...dispatch.Option) *dispatch.Dispatcher {
	formatter := notify.NewFormatter("inbox@example.com")
	return dispatch.New(limiter, formatter, mailer.New(sender, "noreply@example.com"), logger.NewNope(), opts...)
}

func TestDispatchDelivered(t *testing.T) {
	t.Parallel()

	sender := &captureSender{}
	d := newDispatcher(&stubLimiter{decision: ratelimit.Decision{Allowed: true}}, sender)

	result := d.Dispatch(context.Background(), "discuss", "10.0.0.1", validParse)

	assert.Equal(t, dispatch.StatusDelivered, result.Status)
	assert.NotEmpty(t, result.ID)
	require.NotNil(t, sender.last)
	assert.Equal(t, []string{"inbox@example.com"}, sender.last.To)
	assert.Equal(t, "jo@x.com", sender.last.ReplyTo)
	assert.NotEmpty(t, sender.last.HTML)
	assert.NotEmpty(t, sender.last.Text)
	assert.True(t, sender.hadDeadline, "delivery must run under a timeout")
}

func TestDispatchRejected(t *testing.T) {
	t.Parallel()

	sender := &captureSender{}
	d := newDispatcher(&stubLimiter{decision: ratelimit.Decision{RetryAfter: 3 * time.Minute}}, sender)

	result := d.Dispatch(context.Background(), "discuss", "10.0.0.1", validParse)

	assert.Equal(t, dispatch.StatusRejected, result.Status)
	assert.Equal(t, 3*time.Minute, result.RetryAfter)
	assert.Nil(t, sender.last, "rejected requests are not validated or delivered")
}

func TestDispatchValidationFailed(t *testing.T) {
	t.Parallel()

	sender := &captureSender{}
	d := newDispatcher(&stubLimiter{decision: ratelimit.Decision{Allowed: true}}, sender)

	result := d.Dispatch(context.Background(), "discuss", "10.0.0.1", func() (submission.Submission, error) {
		return submission.NewDiscussProject(submission.DiscussProjectForm{Name: "J"})
	})

	assert.Equal(t, dispatch.StatusValidationFailed, result.Status)
	require.NotNil(t, result.Validation)
	assert.Contains(t, result.Validation.Detail(), "Name must be at least 2 characters long")
	assert.Nil(t, sender.last, "invalid submissions never reach the transport")
}

func TestDispatchDeliveryFailed(t *testing.T) {
	t.Parallel()

	sender := &captureSender{err: errors.New("smtp: auth: 535 bad credentials")}
	d := newDispatcher(&stubLimiter{decision: ratelimit.Decision{Allowed: true}}, sender)

	result := d.Dispatch(context.Background(), "discuss", "10.0.0.1", validParse)

	assert.Equal(t, dispatch.StatusDeliveryFailed, result.Status)
	assert.ErrorIs(t, result.Err, mailer.ErrSendFailed)
}

func TestDispatchFailsOpenWhenLimiterErrors(t *testing.T) {
	t.Parallel()

	sender := &captureSender{}
	d := newDispatcher(&stubLimiter{err: errors.New("redis: connection refused")}, sender)

	result := d.Dispatch(context.Background(), "discuss", "10.0.0.1", validParse)

	assert.Equal(t, dispatch.StatusDelivered, result.Status)
	assert.NotNil(t, sender.last)
}
