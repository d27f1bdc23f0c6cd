package resilience

import "errors"

// Sentinel errors for guarded attempts.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrRateLimitExceeded is carried in the failure result of an attempt
	// rejected by the attempt limiter.
	ErrRateLimitExceeded = errors.New("resilience: attempt limit exceeded")

	// ErrNilAuthenticator is returned by NewGuard for a nil strategy.
	ErrNilAuthenticator = errors.New("resilience: authenticator is nil")
)
