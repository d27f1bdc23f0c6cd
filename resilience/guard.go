package resilience

import (
	"context"
	"net"
	"net/http"

	"github.com/jonwraymond/challengeauth/auth"
)

// DefaultLimitMessage is the failure message for a throttled attempt.
const DefaultLimitMessage = "Too many attempts"

// KeyFunc picks the bucket an attempt is charged to. An empty key exempts
// the attempt from limiting.
type KeyFunc func(req *auth.AuthRequest) string

// UsernameKey charges attempts to the submitted username, read from the
// body and then the query like the challenge strategy does. Requests
// without a username are left to the strategy, which rejects them with 400.
func UsernameKey(field string) KeyFunc {
	if field == "" {
		field = "username"
	}
	return func(req *auth.AuthRequest) string {
		if req == nil {
			return ""
		}
		v, _ := auth.LookupFirst(field, req.Body, req.Query)
		return v
	}
}

// RemoteAddrKey charges attempts to the client host of the originating
// HTTP request.
func RemoteAddrKey(req *auth.AuthRequest) string {
	if req == nil || req.HTTP == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(req.HTTP.RemoteAddr)
	if err != nil {
		return req.HTTP.RemoteAddr
	}
	return host
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithAttemptLimiter throttles attempts per key.
func WithAttemptLimiter(l *AttemptLimiter, key KeyFunc) GuardOption {
	return func(g *Guard) {
		g.limiter = l
		g.key = key
	}
}

// WithCircuitBreaker fails attempts fast while the wrapped strategy keeps
// returning errors.
func WithCircuitBreaker(cb *CircuitBreaker) GuardOption {
	return func(g *Guard) {
		g.breaker = cb
	}
}

// WithLimitMessage overrides the failure message of throttled attempts.
func WithLimitMessage(msg string) GuardOption {
	return func(g *Guard) {
		g.limitMessage = msg
	}
}

// Guard wraps an authenticator with attempt limiting and circuit breaking.
//
// Contract:
//   - Throttled attempts yield a failure result carrying ErrRateLimitExceeded
//     and status 429; the wrapped strategy is not called.
//   - While the circuit is open, attempts return ErrCircuitOpen as an error.
//   - Otherwise results and errors of the wrapped strategy pass through
//     unchanged.
type Guard struct {
	inner        auth.Authenticator
	limiter      *AttemptLimiter
	key          KeyFunc
	breaker      *CircuitBreaker
	limitMessage string
}

// NewGuard wraps a. With no options the guard is transparent.
// Returns ErrNilAuthenticator if a is nil.
func NewGuard(a auth.Authenticator, opts ...GuardOption) (*Guard, error) {
	if a == nil {
		return nil, ErrNilAuthenticator
	}
	g := &Guard{inner: a, limitMessage: DefaultLimitMessage}
	for _, opt := range opts {
		opt(g)
	}
	if g.limiter != nil && g.key == nil {
		g.key = UsernameKey("")
	}
	return g, nil
}

func (g *Guard) Name() string {
	return g.inner.Name()
}

func (g *Guard) Supports(ctx context.Context, req *auth.AuthRequest) bool {
	return g.inner.Supports(ctx, req)
}

func (g *Guard) Authenticate(ctx context.Context, req *auth.AuthRequest) (*auth.AuthResult, error) {
	if g.limiter != nil {
		if key := g.key(req); key != "" && !g.limiter.Allow(key) {
			return auth.AuthFailure(ErrRateLimitExceeded, g.inner.Name()).
				WithInfo(&auth.Info{Message: g.limitMessage}).
				WithStatus(http.StatusTooManyRequests), nil
		}
	}

	if g.breaker == nil {
		return g.inner.Authenticate(ctx, req)
	}

	var result *auth.AuthResult
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		result, err = g.inner.Authenticate(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

var _ auth.Authenticator = (*Guard)(nil)
