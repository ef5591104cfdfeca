// Package logger provides structured logging built on Go's standard slog
// package: a factory with environment presets and attribute helpers that
// keep keys consistent across subsystems.
//
//	log := logger.New(logger.WithProduction("certkeeper"))
//
//	log.Warn("failed to persist certificate",
//		logger.Component("certmanager"),
//		logger.Domain(domain),
//		logger.Error(err),
//	)
//
// Attribute helpers are nil-safe: logger.Error(nil) yields an empty Attr,
// so call sites never need explicit nil checks.
package logger
