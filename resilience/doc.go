// Package resilience guards authentication strategies against abuse and
// failing verification backends.
//
// A Guard wraps any auth.Authenticator and is itself an auth.Authenticator,
// so it drops into a registry, a chain or the HTTP middleware unchanged.
// Two protections are available:
//
//   - Attempt limiting: a token bucket per key (by default the submitted
//     username) rejects bursts of guesses with a 429 failure before the
//     verify callback runs.
//
//   - Circuit breaking: when the wrapped strategy keeps returning errors
//     (an unreachable key store, say), the circuit opens and attempts fail
//     fast with ErrCircuitOpen until a probe succeeds.
//
// Rejected credentials are a normal answer from the backend and never trip
// the circuit. Each guarded attempt still calls the wrapped strategy at most
// once; nothing is retried.
//
// Usage:
//
//	limiter := resilience.NewAttemptLimiter(resilience.AttemptLimiterConfig{
//	    Every: 2 * time.Second,
//	    Burst: 5,
//	})
//	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	    MaxFailures:  5,
//	    ResetTimeout: 30 * time.Second,
//	})
//	guarded, err := resilience.NewGuard(strategy,
//	    resilience.WithAttemptLimiter(limiter, resilience.UsernameKey("username")),
//	    resilience.WithCircuitBreaker(cb),
//	)
package resilience
