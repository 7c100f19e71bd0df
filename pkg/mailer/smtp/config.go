package smtp

// Config holds SMTP transport configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	Host     string `env:"SMTP_SERVER" envDefault:"smtp.gmail.com"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"EMAIL_USER"`
	Password string `env:"EMAIL_PASSWORD"`
}

// Configured reports whether the transport has the credentials it needs.
func (c Config) Configured() bool {
	return c.Username != "" && c.Password != ""
}
