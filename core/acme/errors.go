package acme

import "errors"

var (
	// ErrEmailRequired is returned when no contact email is configured for
	// the ACME account.
	ErrEmailRequired = errors.New("contact email is required for ACME account")

	// ErrUnexpectedAuthzStatus is returned when an authorization is neither
	// pending nor already valid.
	ErrUnexpectedAuthzStatus = errors.New("unexpected authorization status")

	// ErrNoHTTP01Challenge is returned when a pending authorization offers
	// no http-01 challenge.
	ErrNoHTTP01Challenge = errors.New("no HTTP-01 challenge found")

	// ErrOrderInvalid is returned when the order reaches the invalid state
	// during validation.
	ErrOrderInvalid = errors.New("order became invalid")

	// ErrValidationTimeout is returned when the order does not validate
	// within the bounded polling attempts.
	ErrValidationTimeout = errors.New("validation timeout")

	// ErrResponderAlreadyStarted is returned when Start is called twice on
	// the same responder.
	ErrResponderAlreadyStarted = errors.New("challenge responder already started")
)
