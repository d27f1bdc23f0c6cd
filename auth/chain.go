package auth

import (
	"context"
	"net/http"
)

// Chain tries several strategies in order.
//
// Strategies whose Supports returns false are skipped. The first success
// wins and errors stop the chain immediately. When every strategy fails the
// first failure is returned, keeping its status code and info.
type Chain struct {
	// Authenticators is the ordered list of strategies to try.
	Authenticators []Authenticator
}

// NewChain creates a chain over the given strategies.
func NewChain(auths ...Authenticator) *Chain {
	return &Chain{Authenticators: auths}
}

// Name returns "chain".
func (c *Chain) Name() string {
	return string(AuthMethodChain)
}

// Supports returns true if any strategy supports the request.
func (c *Chain) Supports(ctx context.Context, req *AuthRequest) bool {
	for _, auth := range c.Authenticators {
		if auth.Supports(ctx, req) {
			return true
		}
	}
	return false
}

// Authenticate tries each strategy in sequence.
func (c *Chain) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	var firstFailure *AuthResult

	for _, auth := range c.Authenticators {
		if !auth.Supports(ctx, req) {
			continue
		}

		result, err := auth.Authenticate(ctx, req)
		if err != nil {
			return nil, err
		}
		if result == nil {
			return nil, errNilResult
		}

		if result.Authenticated {
			return result, nil
		}
		if firstFailure == nil {
			firstFailure = result
		}
	}

	if firstFailure != nil {
		return firstFailure, nil
	}

	return AuthFailure(ErrMissingCredentials, c.Name()).WithStatus(http.StatusUnauthorized), nil
}

// Ensure Chain implements Authenticator
var _ Authenticator = (*Chain)(nil)
