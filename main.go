package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"settlo-leads/api/pkg/clients/email"
	"settlo-leads/api/pkg/config"
	"settlo-leads/api/pkg/db"
	"settlo-leads/api/pkg/db/migrate"
	"settlo-leads/api/pkg/logging"
	"settlo-leads/api/services/health"
	"settlo-leads/api/services/leads"
	"settlo-leads/api/services/notify"
	"settlo-leads/api/services/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel, cfg.Env)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	mailClient, err := newMailClient(ctx, cfg)
	if err != nil {
		return err
	}

	var (
		reg            *prometheus.Registry
		leadMetrics    *leads.Metrics
		notifyMetrics  *notify.Metrics
		metricsHandler http.Handler
	)
	if cfg.MetricsEnabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		leadMetrics = leads.NewMetrics(reg)
		notifyMetrics = notify.NewMetrics(reg)
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}

	notifier, err := notify.NewNotifier(
		mailClient,
		notify.NewFormatter(cfg.BrandName, cfg.Location()),
		notify.Config{
			Provider:  cfg.MailProvider,
			From:      cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
			Recipient: strings.Join(cfg.Recipients(), ","),
		},
		notifyMetrics,
	)
	if err != nil {
		return fmt.Errorf("create notifier: %w", err)
	}

	leadService, err := leads.NewService(store, notifier, leads.Options{
		Production:    cfg.IsProduction(),
		NotifyTimeout: cfg.NotifyTimeout,
		Metrics:       leadMetrics,
	})
	if err != nil {
		return fmt.Errorf("create lead service: %w", err)
	}

	healthService, err := health.NewService(store, cfg.BrandName, cfg.IsProduction())
	if err != nil {
		return fmt.Errorf("create health service: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newHandler(newRouter(healthService, leadService, metricsHandler), cfg.AllowedOrigins()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("Starting server", "addr", srv.Addr, "store", cfg.StoreDriver, "mail", cfg.MailProvider)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-shutdown:
		slog.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Could not stop server gracefully", "error", err)
			srv.Close()
		}
		if err := leadService.Wait(ctx); err != nil {
			slog.Warn("Pending lead notifications abandoned", "error", err)
		}
	}
	return nil
}

// openStore builds the configured lead store and returns its cleanup.
func openStore(ctx context.Context, cfg *config.Config) (storage.Storage, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		mem := storage.NewMemory()
		mem.LogNonDurable()
		return mem, func() {}, nil

	case config.StorePostgres:
		if cfg.DBAutoMigrate {
			if err := migrate.Run(cfg.DatabaseURL, migrate.DirectionUp); err != nil {
				return nil, nil, err
			}
			slog.Info("Database migrations applied")
		}

		dbCfg := db.DefaultConfig(cfg.DatabaseURL)
		dbCfg.MaxConns = cfg.DBMaxConns
		dbCfg.MinConns = cfg.DBMinConns
		pool, err := db.Connect(ctx, dbCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}

		pgStore, err := storage.NewPostgres(pool)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("create store instance: %w", err)
		}
		slog.Info("Database connected successfully")
		return pgStore, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// newMailClient builds the transport selected by MAIL_PROVIDER.
func newMailClient(ctx context.Context, cfg *config.Config) (email.Client, error) {
	switch cfg.MailProvider {
	case config.MailSMTP:
		return email.NewSMTPClient(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.EmailUser,
			Password: cfg.EmailPass,
		})
	case config.MailSendGrid:
		return email.NewSendGridClient(email.SendGridConfig{APIKey: cfg.SendGridAPIKey})
	case config.MailSES:
		return email.LoadSESClient(ctx, email.SESConfig{
			Region:           cfg.AWSRegion,
			AccessKeyID:      cfg.AWSAccessKeyID,
			SecretAccessKey:  cfg.AWSSecretAccessKey,
			EndpointOverride: cfg.AWSEndpointOverride,
		})
	case config.MailStub:
		return email.NewStubClient(cfg.EmailFrom), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
	}
}
