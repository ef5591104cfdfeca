// Package config provides type-safe environment variable loading with
// per-type caching. A .env file is loaded automatically on first use;
// parsing is delegated to the caarlos0/env library.
//
//	type S3Config struct {
//		Endpoint string `env:"S3_ENDPOINT,required"`
//		Bucket   string `env:"S3_BUCKET" envDefault:"local-certs"`
//	}
//
//	var cfg S3Config
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// Each configuration type is parsed once per application lifetime; later
// Load calls for the same type return the cached value. Use MustLoad at
// startup when a missing required variable should stop the process.
package config
