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

	"github.com/hostbound/certkeeper/core/acme"
	"github.com/hostbound/certkeeper/core/certcache"
	"github.com/hostbound/certkeeper/core/certmanager"
	"github.com/hostbound/certkeeper/core/config"
	"github.com/hostbound/certkeeper/core/logger"
	"github.com/hostbound/certkeeper/core/selfsigned"
	"github.com/hostbound/certkeeper/core/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "certkeeper:", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var log *slog.Logger
	if cfg.LocalDev {
		log = logger.New(logger.WithDevelopment("certkeeper"))
	} else {
		log = logger.New(logger.WithProduction("certkeeper"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := certcache.NewS3Store(ctx, certcache.S3Config{
		Bucket:         cfg.S3Bucket,
		Region:         cfg.S3Region,
		AccessKeyID:    cfg.S3AccessKey,
		SecretKey:      cfg.S3SecretKey,
		Endpoint:       cfg.S3Endpoint,
		ForcePathStyle: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create certificate cache: %w", err)
	}
	if err := store.Ping(ctx); err != nil {
		// The manager treats cache failures as non-fatal; surfacing the
		// broken cache at startup saves debugging a silent re-issuance loop.
		log.Warn("certificate cache unreachable",
			logger.Component("main"),
			logger.Error(err))
	}

	issuer, err := buildIssuer(cfg, log)
	if err != nil {
		return err
	}
	manager, err := certmanager.New(store, issuer, certmanager.WithLogger(log))
	if err != nil {
		return err
	}

	opts := []server.Option{server.WithLogger(log)}
	tlsConfig, err := manager.TLSConfig(ctx, cfg.Domain)
	if err != nil {
		// Serving plaintext keeps the site reachable while the operator
		// fixes DNS, port 80 or CA rate limits.
		log.Warn("certificate acquisition failed, falling back to plaintext HTTP",
			logger.Component("main"),
			logger.Domain(cfg.Domain),
			logger.Error(err))
	} else {
		opts = append(opts, server.WithTLS(tlsConfig))
	}

	srv := server.New(":"+cfg.Port, opts...)
	if err := srv.Start(ctx, newHandler(cfg.Domain)); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return srv.Stop()
}

// buildIssuer selects the certificate source for the deployment mode:
// self-signed in local development, ACME against Let's Encrypt otherwise.
func buildIssuer(cfg Config, log *slog.Logger) (certmanager.Issuer, error) {
	if cfg.LocalDev {
		return certmanager.IssuerFunc(func(_ context.Context, domain string) (*certcache.Record, error) {
			log.Info("generating self-signed certificate, browsers will warn",
				logger.Component("main"),
				logger.Domain(domain))
			return selfsigned.Generate(domain)
		}), nil
	}
	return acme.NewOrchestrator(cfg.ACMEContact,
		acme.WithStaging(cfg.ACMEStaging),
		acme.WithLogger(log),
	)
}

func newHandler(domain string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, "certkeeper serving %s\n", domain)
	})
	return mux
}
