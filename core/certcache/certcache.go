package certcache

import (
	"context"
)

// Record holds one domain's certificate material as stored in the cache.
// A Record is immutable once constructed; a new issuance always produces a
// new Record rather than mutating an existing one.
type Record struct {
	// CertificatePEM is the full PEM-encoded certificate chain, leaf first.
	CertificatePEM []byte

	// PrivateKeyPEM is the PEM-encoded private key matching the leaf.
	PrivateKeyPEM []byte
}

// Store is the capability interface the certificate manager needs from a
// cache backend. Implementations must distinguish definite absence
// (ErrNotFound) from "could not ask" transport failures, because the two
// drive different decisions upstream: absence triggers issuance, transport
// failure must not silently do so.
type Store interface {
	// Load retrieves the cached record for domain. Returns ErrNotFound when
	// the backend positively reports no stored record.
	Load(ctx context.Context, domain string) (*Record, error)

	// Save persists the record under the domain's key namespace,
	// certificate first, then private key.
	Save(ctx context.Context, domain string, record *Record) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}
