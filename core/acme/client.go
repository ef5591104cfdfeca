package acme

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"

	"golang.org/x/crypto/acme"
)

// Well-known Let's Encrypt directory endpoints. The staging endpoint issues
// untrusted certificates but has far more generous rate limits; use it while
// validating a deployment.
const (
	LetsEncryptProductionURL = acme.LetsEncryptURL
	LetsEncryptStagingURL    = "https://acme-staging-v02.api.letsencrypt.org/directory"
)

// directoryClient is the narrow slice of golang.org/x/crypto/acme.Client
// the orchestrator drives. The indirection exists so tests can exercise the
// full state machine against a scripted directory without network access.
type directoryClient interface {
	Register(ctx context.Context, account *acme.Account, prompt func(tosURL string) bool) (*acme.Account, error)
	AuthorizeOrder(ctx context.Context, ids []acme.AuthzID, opts ...acme.OrderOption) (*acme.Order, error)
	GetAuthorization(ctx context.Context, url string) (*acme.Authorization, error)
	HTTP01ChallengeResponse(token string) (string, error)
	Accept(ctx context.Context, chal *acme.Challenge) (*acme.Challenge, error)
	GetOrder(ctx context.Context, url string) (*acme.Order, error)
	CreateOrderCert(ctx context.Context, finalizeURL string, csr []byte, bundle bool) ([][]byte, string, error)
}

type clientFactory func(directoryURL string) (directoryClient, error)

// defaultClientFactory creates a real ACME client with a fresh ECDSA account
// key. A new key per issuance means no account credential ever outlives the
// issuance attempt that created it.
func defaultClientFactory(directoryURL string) (directoryClient, error) {
	accountKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &acme.Client{
		Key:          accountKey,
		DirectoryURL: directoryURL,
		UserAgent:    "certkeeper",
	}, nil
}
