// Package certmanager composes the certificate lifecycle: object-storage
// cache, expiry policy, acquisition (ACME or self-signed) and TLS
// configuration assembly.
//
// The flow for one domain is:
//
//	cache load -> expiry check -> reuse, or acquire new -> cache save -> TLS config
//
// A cache hit with at least the configured number of validity days left is
// served without any network issuance. Absence, near-expiry, or unusable
// material triggers the injected Issuer. Persisting the new certificate is
// best-effort: a failed save is logged and the in-memory certificate is
// served anyway.
//
// Concurrent callers asking for the same domain share a single acquisition;
// the manager never runs two issuances for one domain at the same time.
//
//	store, _ := certcache.NewS3Store(ctx, s3cfg)
//	orchestrator, _ := acme.NewOrchestrator("ops@example.com")
//	manager, _ := certmanager.New(store, orchestrator)
//
//	cfg, err := manager.TLSConfig(ctx, "example.com")
//	if err != nil {
//		// fatal: fall back to plaintext or exit
//	}
package certmanager
