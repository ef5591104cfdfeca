// Package certexpiry decides whether cached certificate material is still
// worth serving or close enough to expiry that it must be replaced.
package certexpiry

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"
)

// DefaultMinDaysRemaining is the renewal policy threshold: certificates with
// fewer days of validity left are replaced.
const DefaultMinDaysRemaining = 30

// ErrNoCertificate is returned when the PEM input contains no CERTIFICATE
// block.
var ErrNoCertificate = errors.New("no certificate found in PEM")

// Remaining parses the first certificate in the PEM chain and returns the
// duration until its NotAfter timestamp. An already-expired certificate
// yields zero, not a negative duration and not an error.
func Remaining(certPEM []byte) (time.Duration, error) {
	block := firstCertificateBlock(certPEM)
	if block == nil {
		return 0, ErrNoCertificate
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return 0, fmt.Errorf("failed to parse certificate: %w", err)
	}

	remaining := time.Until(cert.NotAfter)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// IsValid reports whether the certificate has at least minDays of validity
// left. Any parse failure counts as invalid: re-issuance is preferred over
// serving an unparseable certificate.
func IsValid(certPEM []byte, minDays int) bool {
	remaining, err := Remaining(certPEM)
	if err != nil {
		return false
	}
	return remaining >= time.Duration(minDays)*24*time.Hour
}

func firstCertificateBlock(certPEM []byte) *pem.Block {
	rest := certPEM
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return nil
		}
		if block.Type == "CERTIFICATE" {
			return block
		}
	}
}
