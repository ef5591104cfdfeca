package certcache

import "errors"

var (
	// ErrNotFound is returned by Load when the backend positively reports
	// that no record is stored for the domain. It is the only condition
	// treated as a cache miss; every other failure is a cache error.
	ErrNotFound = errors.New("certificate not found in cache")

	// ErrTimeout is returned when a backend call exceeds the per-operation
	// deadline. Never mapped to ErrNotFound: a timed-out query is "unknown",
	// not "absent".
	ErrTimeout = errors.New("cache operation timed out")

	// ErrUnavailable is returned when the backend is unreachable or rejects
	// the request with an unexpected status.
	ErrUnavailable = errors.New("cache backend unavailable")

	// ErrInvalidConfig is returned when required backend settings are missing.
	ErrInvalidConfig = errors.New("invalid cache configuration")
)
