// Package tlsconfig turns PEM certificate material into a ready-to-share
// *tls.Config for the process's TLS listeners.
package tlsconfig

import (
	"crypto"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

var (
	// ErrEmptyCertChain is returned when the PEM input contains no
	// CERTIFICATE blocks.
	ErrEmptyCertChain = errors.New("no certificates found in PEM")

	// ErrInvalidPrivateKey is returned when no private key can be parsed
	// from the PEM input.
	ErrInvalidPrivateKey = errors.New("no private key found in PEM")
)

// Build parses the full certificate chain and the private key and returns a
// TLS server configuration negotiating HTTP/2 then HTTP/1.1. The returned
// config is immutable by convention and safe to share across every listener
// terminating TLS for the same domain.
func Build(certPEM, keyPEM []byte) (*tls.Config, error) {
	chainDER := collectCertificates(certPEM)
	if len(chainDER) == 0 {
		return nil, ErrEmptyCertChain
	}

	leaf, err := x509.ParseCertificate(chainDER[0])
	if err != nil {
		return nil, fmt.Errorf("failed to parse leaf certificate: %w", err)
	}

	key, err := parsePrivateKey(keyPEM)
	if err != nil {
		return nil, err
	}

	cert := tls.Certificate{
		Certificate: chainDER,
		PrivateKey:  key,
		Leaf:        leaf,
	}

	// Cipher and curve selection follows Mozilla's modern compatibility
	// recommendations: TLS 1.2+ with forward-secret AEAD suites only.
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
		},
		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},
		NextProtos: []string{"h2", "http/1.1"},
	}, nil
}

func collectCertificates(certPEM []byte) [][]byte {
	var chain [][]byte
	rest := certPEM
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return chain
		}
		if block.Type == "CERTIFICATE" {
			chain = append(chain, block.Bytes)
		}
	}
}

// parsePrivateKey tries PKCS#8 first (the format this project writes), then
// EC and PKCS#1 for keys produced by other tooling.
func parsePrivateKey(keyPEM []byte) (crypto.PrivateKey, error) {
	rest := keyPEM
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return nil, ErrInvalidPrivateKey
		}

		if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
			return key, nil
		}
		if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
			return key, nil
		}
		if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
			return key, nil
		}
	}
}
