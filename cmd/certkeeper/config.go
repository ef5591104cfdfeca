package main

import (
	"errors"
	"fmt"
	"strings"
)

// Config is the deployment environment of the certkeeper binary. S3 settings
// are optional in local development, where they default to a MinIO instance
// on localhost.
type Config struct {
	// Domain is the DNS name certificates are issued for.
	Domain string `env:"DOMAIN,required"`

	// LocalDev switches issuance to self-signed certificates and relaxes
	// the S3 requirements below.
	LocalDev bool `env:"LOCAL_DEV" envDefault:"false"`

	ACMEContact string `env:"ACME_CONTACT_EMAIL"`
	ACMEStaging bool   `env:"ACME_STAGING" envDefault:"false"`

	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`

	Port string `env:"PORT" envDefault:"8443"`
}

var (
	errInvalidDomain   = errors.New("invalid DOMAIN format")
	errInvalidContact  = errors.New("invalid ACME_CONTACT_EMAIL format")
	errInvalidEndpoint = errors.New("S3_ENDPOINT must start with http:// or https://")
)

// Validate applies local-development defaults and enforces the requirements
// that depend on the deployment mode, which env tags cannot express.
func (c *Config) Validate() error {
	if c.Domain == "" || strings.Contains(c.Domain, " ") {
		return errInvalidDomain
	}

	if c.LocalDev {
		if c.S3Endpoint == "" {
			c.S3Endpoint = "http://localhost:9000"
		}
		if c.S3Bucket == "" {
			c.S3Bucket = "local-certs"
		}
		if c.S3AccessKey == "" {
			c.S3AccessKey = "minioadmin"
		}
		if c.S3SecretKey == "" {
			c.S3SecretKey = "minioadmin"
		}
	} else {
		if c.ACMEContact == "" {
			return fmt.Errorf("ACME_CONTACT_EMAIL environment variable required for Let's Encrypt")
		}
		for name, value := range map[string]string{
			"S3_ENDPOINT":   c.S3Endpoint,
			"S3_BUCKET":     c.S3Bucket,
			"S3_ACCESS_KEY": c.S3AccessKey,
			"S3_SECRET_KEY": c.S3SecretKey,
		} {
			if value == "" {
				return fmt.Errorf("%s environment variable required for certificate storage", name)
			}
		}
	}

	if c.ACMEContact != "" &&
		(!strings.Contains(c.ACMEContact, "@") || !strings.Contains(c.ACMEContact, ".")) {
		return errInvalidContact
	}

	if !strings.HasPrefix(c.S3Endpoint, "http://") && !strings.HasPrefix(c.S3Endpoint, "https://") {
		return errInvalidEndpoint
	}
	return nil
}
