package certexpiry_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostbound/certkeeper/core/certexpiry"
)

// generateCertPEM creates a self-signed certificate expiring at notAfter.
func generateCertPEM(t *testing.T, notAfter time.Time) []byte {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "test.example.com"},
		NotBefore:    notAfter.Add(-90 * 24 * time.Hour),
		NotAfter:     notAfter,
		DNSNames:     []string{"test.example.com"},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

func TestRemaining(t *testing.T) {
	t.Run("future expiry", func(t *testing.T) {
		certPEM := generateCertPEM(t, time.Now().Add(60*24*time.Hour))

		remaining, err := certexpiry.Remaining(certPEM)
		require.NoError(t, err)
		assert.InDelta(t, (60 * 24 * time.Hour).Hours(), remaining.Hours(), 1)
	})

	t.Run("already expired returns zero", func(t *testing.T) {
		certPEM := generateCertPEM(t, time.Now().Add(-24*time.Hour))

		remaining, err := certexpiry.Remaining(certPEM)
		require.NoError(t, err)
		assert.Equal(t, time.Duration(0), remaining)
	})

	t.Run("no certificate block", func(t *testing.T) {
		_, err := certexpiry.Remaining([]byte("not a pem"))
		assert.ErrorIs(t, err, certexpiry.ErrNoCertificate)
	})

	t.Run("corrupt certificate body", func(t *testing.T) {
		corrupt := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte("garbage")})
		_, err := certexpiry.Remaining(corrupt)
		assert.Error(t, err)
	})
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		notAfter time.Time
		minDays  int
		want     bool
	}{
		{"well beyond threshold", time.Now().Add(90 * 24 * time.Hour), 30, true},
		{"just above threshold", time.Now().Add(31 * 24 * time.Hour), 30, true},
		{"below threshold", time.Now().Add(10 * 24 * time.Hour), 30, false},
		{"already expired", time.Now().Add(-time.Hour), 30, false},
		{"zero threshold accepts any unexpired", time.Now().Add(time.Hour), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			certPEM := generateCertPEM(t, tt.notAfter)
			assert.Equal(t, tt.want, certexpiry.IsValid(certPEM, tt.minDays))
		})
	}

	t.Run("parse error is invalid", func(t *testing.T) {
		assert.False(t, certexpiry.IsValid([]byte("junk"), 30))
	})
}
