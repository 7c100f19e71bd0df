// Command server runs the contact form API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/solprod/contact-api/internal/config"
	"github.com/solprod/contact-api/internal/dispatch"
	"github.com/solprod/contact-api/internal/handler"
	"github.com/solprod/contact-api/internal/middleware"
	"github.com/solprod/contact-api/internal/notify"
	"github.com/solprod/contact-api/pkg/health"
	"github.com/solprod/contact-api/pkg/logger"
	"github.com/solprod/contact-api/pkg/mailer"
	resendmailer "github.com/solprod/contact-api/pkg/mailer/resend"
	smtpmailer "github.com/solprod/contact-api/pkg/mailer/smtp"
	"github.com/solprod/contact-api/pkg/ratelimit"
	"github.com/solprod/contact-api/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewWithSentry(cfg.Sentry, middleware.RequestIDExtractor()).
		With(slog.String("app", "contact-api"))

	if !cfg.MailConfigured() {
		// Not fatal: the health endpoint reports the gap and delivery
		// attempts surface it until credentials arrive.
		log.Error("mail transport not configured, submissions cannot be delivered",
			slog.String("provider", cfg.MailProvider))
	}

	var sender mailer.Sender
	switch cfg.MailProvider {
	case config.ProviderResend:
		sender = resendmailer.New(cfg.Resend)
	default:
		sender = smtpmailer.New(cfg.SMTP)
	}
	mail := mailer.New(sender, "")

	checks := health.Checks{}
	var limiter ratelimit.Limiter
	var sweep *cron.Cron

	if cfg.RateLimit.RedisURL != "" {
		connectCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		client, err := redis.Open(connectCtx, cfg.RateLimit.RedisURL)
		cancel()
		if err != nil {
			return fmt.Errorf("connect rate limit store: %w", err)
		}
		defer func() { _ = client.Close() }()
		checks["redis"] = redis.Healthcheck(client)
		limiter = ratelimit.NewRedis(client, cfg.RateLimit.Limit, cfg.RateLimit.Window)
	} else {
		mem := ratelimit.NewMemory(cfg.RateLimit.Limit, cfg.RateLimit.Window)
		sweep = cron.New()
		if _, err := sweep.AddFunc(fmt.Sprintf("@every %s", cfg.RateLimit.Window), func() {
			if n := mem.Prune(); n > 0 {
				log.Debug("pruned rate limit buckets", slog.Int("removed", n))
			}
		}); err != nil {
			return fmt.Errorf("schedule rate limit sweep: %w", err)
		}
		limiter = mem
	}

	formatter := notify.NewFormatter(cfg.RecipientEmail)
	dispatcher := dispatch.New(limiter, formatter, mail, log,
		dispatch.WithSendTimeout(cfg.SendTimeout))

	r := chi.NewRouter()
	r.Use(
		chimiddleware.RequestID,
		chimiddleware.RealIP,
		middleware.RequestLogger(log),
		chimiddleware.Recoverer,
		middleware.CORS(middleware.WithAllowOrigins(cfg.CORSAllowOrigins...)),
	)
	handler.New(dispatcher, cfg.MailConfigured(), checks, log).Routes(r)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if sweep != nil {
		sweep.Start()
		defer sweep.Stop()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting",
			slog.String("address", server.Addr),
			slog.String("mail_provider", cfg.MailProvider),
			slog.String("recipient", cfg.RecipientEmail))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
