// Package config loads service configuration from the environment.
// A .env file is honored when present, matching local development setups.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/solprod/contact-api/pkg/logger"
	"github.com/solprod/contact-api/pkg/mailer/resend"
	"github.com/solprod/contact-api/pkg/mailer/smtp"
)

// Mail provider selectors for Config.MailProvider.
const (
	ProviderSMTP   = "smtp"
	ProviderResend = "resend"
)

// Config is the full service configuration.
type Config struct {
	Port             int           `env:"PORT" envDefault:"8000"`
	RecipientEmail   string        `env:"RECIPIENT_EMAIL,notEmpty"`
	MailProvider     string        `env:"MAILER_PROVIDER" envDefault:"smtp"`
	SendTimeout      time.Duration `env:"MAIL_SEND_TIMEOUT" envDefault:"15s"`
	CORSAllowOrigins []string      `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`

	RateLimit RateLimitConfig
	SMTP      smtp.Config
	Resend    resend.Config
	Sentry    logger.SentryConfig
}

// RateLimitConfig bounds submission attempts per endpoint per client.
// When RedisURL is set the counters live in Redis instead of process memory.
type RateLimitConfig struct {
	Limit    int           `env:"RATE_LIMIT" envDefault:"5"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	RedisURL string        `env:"RATE_LIMIT_REDIS_URL"`
}

// Load reads the environment (and .env if present) into a Config.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}

	switch cfg.MailProvider {
	case ProviderSMTP, ProviderResend:
	default:
		return Config{}, fmt.Errorf("config: unknown MAILER_PROVIDER %q", cfg.MailProvider)
	}
	if cfg.RateLimit.Limit <= 0 || cfg.RateLimit.Window <= 0 {
		return Config{}, fmt.Errorf("config: rate limit and window must be positive")
	}

	return cfg, nil
}

// MailConfigured reports whether the selected provider has credentials.
// The service still boots without them so the health endpoint can report the
// gap; delivery attempts fail until credentials are supplied.
func (c Config) MailConfigured() bool {
	switch c.MailProvider {
	case ProviderResend:
		return c.Resend.Configured()
	default:
		return c.SMTP.Configured()
	}
}
