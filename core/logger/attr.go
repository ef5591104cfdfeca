package logger

import (
	"log/slog"
	"time"
)

// Attribute helpers use the empty Attr pattern for nil safety, so call
// sites never need explicit nil checks.

// Error creates an attribute for a single error under the key "error".
// Returns an empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component tags a log record with the subsystem that produced it.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Domain tags a log record with the DNS name it concerns.
func Domain(name string) slog.Attr {
	return slog.String("domain", name)
}

// Duration creates an attribute for an elapsed or remaining duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Addr tags a log record with a network address.
func Addr(addr string) slog.Attr {
	return slog.String("addr", addr)
}
