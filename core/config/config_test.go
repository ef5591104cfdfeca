package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostbound/certkeeper/core/config"
)

func TestLoad(t *testing.T) {
	t.Run("parses tagged fields from the environment", func(t *testing.T) {
		type storageConfig struct {
			Endpoint string `env:"TEST_CFG_ENDPOINT,required"`
			Bucket   string `env:"TEST_CFG_BUCKET" envDefault:"local-certs"`
		}

		t.Setenv("TEST_CFG_ENDPOINT", "http://localhost:9000")

		var cfg storageConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "http://localhost:9000", cfg.Endpoint)
		assert.Equal(t, "local-certs", cfg.Bucket)
	})

	t.Run("missing required variable fails", func(t *testing.T) {
		type strictConfig struct {
			Domain string `env:"TEST_CFG_MISSING_DOMAIN,required"`
		}

		var cfg strictConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParseFailed)
	})

	t.Run("same type is loaded once and cached", func(t *testing.T) {
		type cachedConfig struct {
			Region string `env:"TEST_CFG_REGION" envDefault:"us-east-1"`
		}

		t.Setenv("TEST_CFG_REGION", "eu-west-1")
		var first cachedConfig
		require.NoError(t, config.Load(&first))
		require.Equal(t, "eu-west-1", first.Region)

		// Changing the environment after the first load has no effect.
		t.Setenv("TEST_CFG_REGION", "ap-south-1")
		var second cachedConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, "eu-west-1", second.Region)
	})

	t.Run("nil target fails", func(t *testing.T) {
		err := config.Load[struct{}](nil)
		assert.ErrorIs(t, err, config.ErrNilConfig)
	})
}

func TestMustLoad(t *testing.T) {
	type panicConfig struct {
		Token string `env:"TEST_CFG_MUST_TOKEN,required"`
	}

	assert.Panics(t, func() {
		var cfg panicConfig
		config.MustLoad(&cfg)
	})
}
