package acme

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/acme"

	"github.com/hostbound/certkeeper/core/certcache"
	"github.com/hostbound/certkeeper/core/logger"
)

const (
	// defaultResponderAddr is the standard HTTP port the CA probes.
	defaultResponderAddr = ":80"

	// defaultReadyDelay is how long the orchestrator waits after starting
	// the responder before telling the CA the challenges are ready. The CA
	// may probe immediately after readiness is signaled; the delay keeps a
	// freshly bound listener from racing the first probe.
	defaultReadyDelay = time.Second

	defaultPollInitialDelay = 250 * time.Millisecond
	defaultPollMaxDelay     = 5 * time.Second
	defaultMaxPollAttempts  = 20
)

// Orchestrator drives a complete http-01 certificate issuance against an
// ACME directory: account registration, order creation, authorization
// handling, challenge validation, finalization and download. Each call to
// Obtain is one self-contained issuance; nothing persists between calls.
type Orchestrator struct {
	directoryURL  string
	email         string
	responderAddr string
	readyDelay    time.Duration
	pollInitial   time.Duration
	pollMax       time.Duration
	maxPolls      int
	logger        *slog.Logger
	newClient     clientFactory
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDirectoryURL overrides the ACME directory endpoint.
func WithDirectoryURL(url string) Option {
	return func(o *Orchestrator) {
		if url != "" {
			o.directoryURL = url
		}
	}
}

// WithStaging selects the Let's Encrypt staging directory. Use it while
// validating a deployment to stay clear of production rate limits.
func WithStaging(staging bool) Option {
	return func(o *Orchestrator) {
		if staging {
			o.directoryURL = LetsEncryptStagingURL
		}
	}
}

// WithResponderAddress overrides the bind address of the challenge
// responder (default ":80"). The CA always probes port 80; any other value
// assumes a port-forwarding arrangement in front of this process.
func WithResponderAddress(addr string) Option {
	return func(o *Orchestrator) {
		if addr != "" {
			o.responderAddr = addr
		}
	}
}

// WithPollingPolicy overrides the validation polling parameters.
// Primarily useful for testing to avoid long delays.
func WithPollingPolicy(initial, max time.Duration, attempts int) Option {
	return func(o *Orchestrator) {
		if initial > 0 {
			o.pollInitial = initial
		}
		if max > 0 {
			o.pollMax = max
		}
		if attempts > 0 {
			o.maxPolls = attempts
		}
	}
}

// WithReadyDelay overrides the settle delay between responder start and
// challenge readiness signaling.
func WithReadyDelay(delay time.Duration) Option {
	return func(o *Orchestrator) {
		if delay >= 0 {
			o.readyDelay = delay
		}
	}
}

// WithLogger sets the logger used for issuance progress messages.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOrchestrator creates an orchestrator registering accounts under the
// given contact email against the Let's Encrypt production directory unless
// overridden by options.
func NewOrchestrator(email string, opts ...Option) (*Orchestrator, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}

	o := &Orchestrator{
		directoryURL:  LetsEncryptProductionURL,
		email:         email,
		responderAddr: defaultResponderAddr,
		readyDelay:    defaultReadyDelay,
		pollInitial:   defaultPollInitialDelay,
		pollMax:       defaultPollMaxDelay,
		maxPolls:      defaultMaxPollAttempts,
		logger:        slog.Default(),
		newClient:     defaultClientFactory,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Obtain runs the full issuance state machine for a single domain and
// returns the signed chain plus the private key. There is no partial
// success: any failing step aborts the whole issuance.
func (o *Orchestrator) Obtain(ctx context.Context, domain string) (*certcache.Record, error) {
	client, err := o.newClient(o.directoryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create ACME client: %w", err)
	}

	o.logger.Info("creating ACME account",
		logger.Component("acme"),
		slog.String("directory", o.directoryURL))
	if _, err := client.Register(ctx, &acme.Account{
		Contact: []string{"mailto:" + o.email},
	}, acme.AcceptTOS); err != nil {
		return nil, fmt.Errorf("failed to register ACME account: %w", err)
	}

	o.logger.Info("creating certificate order",
		logger.Component("acme"),
		logger.Domain(domain))
	order, err := client.AuthorizeOrder(ctx, acme.DomainIDs(domain))
	if err != nil {
		return nil, fmt.Errorf("failed to create order for %s: %w", domain, err)
	}

	challenges, table, err := o.collectChallenges(ctx, client, order)
	if err != nil {
		return nil, err
	}

	if len(challenges) > 0 {
		if err := o.completeChallenges(ctx, client, order, challenges, table); err != nil {
			return nil, err
		}
	}

	return o.finalize(ctx, client, order, domain)
}

// collectChallenges walks the order's authorizations: already-valid ones
// need nothing, pending ones contribute their http-01 challenge to the
// table, anything else is a protocol error.
func (o *Orchestrator) collectChallenges(ctx context.Context, client directoryClient, order *acme.Order) ([]*acme.Challenge, map[string]string, error) {
	var challenges []*acme.Challenge
	table := make(map[string]string)

	for _, authzURL := range order.AuthzURLs {
		authz, err := client.GetAuthorization(ctx, authzURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch authorization: %w", err)
		}

		switch authz.Status {
		case acme.StatusValid:
			continue
		case acme.StatusPending:
		default:
			return nil, nil, fmt.Errorf("%w: %s for %s",
				ErrUnexpectedAuthzStatus, authz.Status, authz.Identifier.Value)
		}

		var challenge *acme.Challenge
		for _, chal := range authz.Challenges {
			if chal.Type == "http-01" {
				challenge = chal
				break
			}
		}
		if challenge == nil {
			return nil, nil, fmt.Errorf("%w: authorization for %s",
				ErrNoHTTP01Challenge, authz.Identifier.Value)
		}

		keyAuth, err := client.HTTP01ChallengeResponse(challenge.Token)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to compute key authorization: %w", err)
		}
		table[challenge.Token] = keyAuth
		challenges = append(challenges, challenge)
	}

	return challenges, table, nil
}

// completeChallenges starts the responder, signals readiness and polls the
// order until it validates. The responder is stopped on every exit path.
func (o *Orchestrator) completeChallenges(ctx context.Context, client directoryClient, order *acme.Order, challenges []*acme.Challenge, table map[string]string) error {
	responder := NewResponder(table, o.responderAddr, o.logger)
	if err := responder.Start(); err != nil {
		return fmt.Errorf("failed to start challenge responder on %s (is port 80 free and reachable from the internet?): %w",
			o.responderAddr, err)
	}
	defer responder.Stop()

	// The responder must be listening before readiness is signaled.
	if err := sleepCtx(ctx, o.readyDelay); err != nil {
		return err
	}

	o.logger.Info("signaling challenge readiness",
		logger.Component("acme"),
		slog.Int("challenges", len(challenges)))
	for _, challenge := range challenges {
		if _, err := client.Accept(ctx, challenge); err != nil {
			return fmt.Errorf("failed to signal challenge readiness: %w", err)
		}
	}

	delay := o.pollInitial
	for attempt := 1; ; attempt++ {
		if err := sleepCtx(ctx, delay); err != nil {
			return err
		}

		current, err := client.GetOrder(ctx, order.URI)
		if err != nil {
			return fmt.Errorf("failed to poll order status: %w", err)
		}

		switch current.Status {
		case acme.StatusReady, acme.StatusValid:
			o.logger.Info("validation successful",
				logger.Component("acme"),
				slog.Int("attempts", attempt))
			return nil
		case acme.StatusInvalid:
			return fmt.Errorf("%w: check that the domain's DNS record points at this host and that the CA has not rate-limited it", ErrOrderInvalid)
		}

		if attempt >= o.maxPolls {
			return fmt.Errorf("%w: order still %s after %d attempts; check that port 80 is reachable from the internet",
				ErrValidationTimeout, current.Status, attempt)
		}

		delay *= 2
		if delay > o.pollMax {
			delay = o.pollMax
		}
	}
}

// finalize generates the certificate key pair, submits the CSR and downloads
// the signed chain.
func (o *Orchestrator) finalize(ctx context.Context, client directoryClient, order *acme.Order, domain string) (*certcache.Record, error) {
	o.logger.Info("finalizing certificate order",
		logger.Component("acme"),
		logger.Domain(domain))

	certKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate certificate key: %w", err)
	}

	csr, err := x509.CreateCertificateRequest(rand.Reader, &x509.CertificateRequest{
		Subject:  pkix.Name{CommonName: domain},
		DNSNames: []string{domain},
	}, certKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSR: %w", err)
	}

	chainDER, _, err := client.CreateOrderCert(ctx, order.FinalizeURL, csr, true)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize order: %w", err)
	}
	if len(chainDER) == 0 {
		return nil, fmt.Errorf("empty certificate chain received from CA")
	}

	certPEM := encodeChainPEM(chainDER)

	keyDER, err := x509.MarshalPKCS8PrivateKey(certKey)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})

	o.logger.Info("certificate obtained",
		logger.Component("acme"),
		logger.Domain(domain),
		slog.Int("chain_length", len(chainDER)))

	return &certcache.Record{
		CertificatePEM: certPEM,
		PrivateKeyPEM:  keyPEM,
	}, nil
}

func encodeChainPEM(chainDER [][]byte) []byte {
	var out []byte
	for _, der := range chainDER {
		out = append(out, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})...)
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
