package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solprod/contact-api/internal/config"
)

func TestLoad(t *testing.T) {
	t.Setenv("RECIPIENT_EMAIL", "inbox@example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "inbox@example.com", cfg.RecipientEmail)
	assert.Equal(t, config.ProviderSMTP, cfg.MailProvider)
	assert.Equal(t, 15*time.Second, cfg.SendTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
	assert.Equal(t, 5, cfg.RateLimit.Limit)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestLoadRequiresRecipient(t *testing.T) {
	t.Setenv("RECIPIENT_EMAIL", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("RECIPIENT_EMAIL", "inbox@example.com")
	t.Setenv("MAILER_PROVIDER", "carrier-pigeon")

	_, err := config.Load()
	assert.ErrorContains(t, err, "MAILER_PROVIDER")
}

func TestMailConfigured(t *testing.T) {
	t.Setenv("RECIPIENT_EMAIL", "inbox@example.com")
	t.Setenv("EMAIL_USER", "forms@example.com")
	t.Setenv("EMAIL_PASSWORD", "secret")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.MailConfigured())

	cfg.MailProvider = config.ProviderResend
	assert.False(t, cfg.MailConfigured(), "resend credentials are separate from SMTP")
}
