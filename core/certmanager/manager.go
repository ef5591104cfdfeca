package certmanager

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hostbound/certkeeper/core/certcache"
	"github.com/hostbound/certkeeper/core/certexpiry"
	"github.com/hostbound/certkeeper/core/logger"
	"github.com/hostbound/certkeeper/core/tlsconfig"
)

// Issuer acquires a brand-new certificate record for a domain. Production
// wiring injects the ACME orchestrator; local development injects a
// self-signed issuer.
type Issuer interface {
	Obtain(ctx context.Context, domain string) (*certcache.Record, error)
}

// IssuerFunc adapts a function to the Issuer interface.
type IssuerFunc func(ctx context.Context, domain string) (*certcache.Record, error)

func (f IssuerFunc) Obtain(ctx context.Context, domain string) (*certcache.Record, error) {
	return f(ctx, domain)
}

// Manager guarantees that a usable TLS server configuration for a domain is
// available: cached certificates are reused while still comfortably inside
// their validity window, everything else triggers acquisition of a new one.
//
// The returned *tls.Config is immutable by convention and shared read-only
// by every listener; a later renewal produces a new config rather than
// mutating a served one.
type Manager struct {
	store   certcache.Store
	issuer  Issuer
	minDays int
	logger  *slog.Logger

	// group guarantees at most one in-flight acquisition per domain;
	// concurrent callers share the first caller's result.
	group singleflight.Group
}

// Option configures a Manager.
type Option func(*Manager)

// WithMinDaysRemaining overrides the renewal threshold (default 30 days).
func WithMinDaysRemaining(days int) Option {
	return func(m *Manager) {
		if days >= 0 {
			m.minDays = days
		}
	}
}

// WithLogger sets the logger for lifecycle progress and warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a certificate manager over the given cache store and issuer.
func New(store certcache.Store, issuer Issuer, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if issuer == nil {
		return nil, ErrIssuerRequired
	}

	m := &Manager{
		store:   store,
		issuer:  issuer,
		minDays: certexpiry.DefaultMinDaysRemaining,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// TLSConfig returns a ready-to-use TLS server configuration for the domain,
// reusing the cached certificate when possible and acquiring a new one
// otherwise. Failure to persist a freshly acquired certificate is logged
// and non-fatal; failure to acquire one is fatal and propagated so the
// caller can decide between plaintext fallback and exit.
func (m *Manager) TLSConfig(ctx context.Context, domain string) (*tls.Config, error) {
	cfg, err, _ := m.group.Do(domain, func() (any, error) {
		return m.obtain(ctx, domain)
	})
	if err != nil {
		return nil, err
	}
	return cfg.(*tls.Config), nil
}

func (m *Manager) obtain(ctx context.Context, domain string) (*tls.Config, error) {
	log := m.logger.With(logger.Component("certmanager"), logger.Domain(domain))

	log.Info("checking certificate cache")
	record, err := m.store.Load(ctx, domain)
	switch {
	case err == nil:
		if cfg := m.reuseCached(log, record); cfg != nil {
			return cfg, nil
		}
	case errors.Is(err, certcache.ErrNotFound):
		log.Info("no cached certificate, acquiring a new one")
	default:
		// The cache could not be queried. Absence was not established, but
		// serving nothing is worse than risking a duplicate issuance, so
		// proceed after surfacing the failure loudly.
		log.Warn("cache query failed, proceeding with acquisition", logger.Error(err))
	}

	newRecord, err := m.issuer.Obtain(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire certificate for %s: %w", domain, err)
	}

	if err := m.store.Save(ctx, domain, newRecord); err != nil {
		// The in-memory certificate is complete and usable; losing the
		// cache write only costs a re-issuance on the next restart.
		log.Warn("failed to persist certificate to cache, continuing with in-memory certificate",
			logger.Error(err))
	} else {
		log.Info("certificate persisted to cache")
	}

	return tlsconfig.Build(newRecord.CertificatePEM, newRecord.PrivateKeyPEM)
}

// reuseCached returns a TLS config built from the cached record when it is
// still valid and buildable, nil when a new certificate is needed.
func (m *Manager) reuseCached(log *slog.Logger, record *certcache.Record) *tls.Config {
	if !certexpiry.IsValid(record.CertificatePEM, m.minDays) {
		log.Info("cached certificate expiring soon or unparseable, acquiring a new one",
			slog.Int("min_days_remaining", m.minDays))
		return nil
	}

	remaining, _ := certexpiry.Remaining(record.CertificatePEM)
	cfg, err := tlsconfig.Build(record.CertificatePEM, record.PrivateKeyPEM)
	if err != nil {
		log.Warn("cached certificate material unusable, acquiring a new one", logger.Error(err))
		return nil
	}

	log.Info("reusing cached certificate", logger.Duration(remaining.Round(time.Hour)))
	return cfg
}
