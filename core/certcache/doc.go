// Package certcache stores TLS certificate material in an object-storage
// backend so that server restarts reuse previously issued certificates
// instead of re-triggering issuance against a rate-limited authority.
//
// The Store interface deliberately separates "definitely absent"
// (ErrNotFound) from "could not ask" (ErrTimeout, ErrUnavailable). Callers
// must treat only the former as permission to request a new certificate.
//
// # Usage
//
//	store, err := certcache.NewS3Store(ctx, certcache.S3Config{
//		Bucket:      "certs",
//		Region:      "us-east-1",
//		Endpoint:    "http://localhost:9000",
//		AccessKeyID: "minioadmin",
//		SecretKey:   "minioadmin",
//	})
//	if err != nil {
//		return err
//	}
//
//	record, err := store.Load(ctx, "example.com")
//	switch {
//	case errors.Is(err, certcache.ErrNotFound):
//		// no cached certificate, issue a new one
//	case err != nil:
//		// backend failure, do not assume absence
//	}
package certcache
