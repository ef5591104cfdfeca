package tlsconfig_test

import (
	"crypto/tls"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostbound/certkeeper/core/selfsigned"
	"github.com/hostbound/certkeeper/core/tlsconfig"
)

func TestBuild(t *testing.T) {
	record, err := selfsigned.Generate("tls.example.test")
	require.NoError(t, err)

	cfg, err := tlsconfig.Build(record.CertificatePEM, record.PrivateKeyPEM)
	require.NoError(t, err)

	assert.Equal(t, []string{"h2", "http/1.1"}, cfg.NextProtos)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	require.Len(t, cfg.Certificates, 1)
	require.NotNil(t, cfg.Certificates[0].Leaf)
	assert.Equal(t, "tls.example.test", cfg.Certificates[0].Leaf.Subject.CommonName)
}

func TestBuild_EmptyCertChain(t *testing.T) {
	record, err := selfsigned.Generate("tls.example.test")
	require.NoError(t, err)

	cfg, err := tlsconfig.Build(nil, record.PrivateKeyPEM)
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, tlsconfig.ErrEmptyCertChain)

	// A PEM block of the wrong type is also an empty chain.
	cfg, err = tlsconfig.Build([]byte("-----BEGIN PUBLIC KEY-----\nAAAA\n-----END PUBLIC KEY-----\n"), record.PrivateKeyPEM)
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, tlsconfig.ErrEmptyCertChain)
}

func TestBuild_CorruptPrivateKey(t *testing.T) {
	record, err := selfsigned.Generate("tls.example.test")
	require.NoError(t, err)

	tests := []struct {
		name   string
		keyPEM []byte
	}{
		{"not pem at all", []byte("this is not a key")},
		{"pem with garbage body", pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte("garbage")})},
		{"empty input", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := tlsconfig.Build(record.CertificatePEM, tt.keyPEM)
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, tlsconfig.ErrInvalidPrivateKey)
		})
	}
}

func TestBuild_MultiBlockChain(t *testing.T) {
	leaf, err := selfsigned.Generate("tls.example.test")
	require.NoError(t, err)
	issuer, err := selfsigned.Generate("issuer.example.test")
	require.NoError(t, err)

	chain := append(append([]byte{}, leaf.CertificatePEM...), issuer.CertificatePEM...)

	cfg, err := tlsconfig.Build(chain, leaf.PrivateKeyPEM)
	require.NoError(t, err)
	assert.Len(t, cfg.Certificates[0].Certificate, 2)
	assert.Equal(t, "tls.example.test", cfg.Certificates[0].Leaf.Subject.CommonName)
}
