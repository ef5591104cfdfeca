// Package acme implements the certificate issuance state machine for the
// http-01 challenge type against an RFC 8555 directory such as Let's
// Encrypt.
//
// One call to Orchestrator.Obtain performs a complete, self-contained
// issuance:
//
//	account -> order -> authorizations -> challenge -> validation -> finalize -> download
//
// Authorizations that are already valid are skipped. For pending ones the
// orchestrator publishes the key authorizations into an immutable challenge
// table, starts the Responder on port 80, waits a short settle delay so the
// listener cannot race the CA's first probe, and only then signals
// readiness. Validation is polled with bounded backoff (250ms initial, 5s
// cap, 20 attempts); the responder is torn down on every exit path, success
// or failure, so neither the goroutine nor the port can leak.
//
// The package supports exactly one DNS identifier per order and only the
// http-01 challenge type. It is not a general-purpose ACME client.
//
// A fresh account key and a fresh certificate key are generated per
// issuance; no credential material survives the attempt that created it.
package acme
