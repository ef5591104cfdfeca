package certmanager

import "errors"

var (
	// ErrStoreRequired is returned when no certificate cache store is
	// provided.
	ErrStoreRequired = errors.New("certificate store is required")

	// ErrIssuerRequired is returned when no certificate issuer is provided.
	ErrIssuerRequired = errors.New("certificate issuer is required")
)
