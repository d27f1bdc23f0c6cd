package auth

import (
	"context"
	"net/http"
)

// Authenticator validates credentials and returns an identity.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods should honor cancellation/deadlines.
// - Errors: Authenticate returns (nil, error) for internal errors;
//   returns (AuthResult, nil) for auth failures (check result.Authenticated).
type Authenticator interface {
	// Name returns a unique identifier for this authenticator.
	Name() string

	// Supports returns true if this authenticator can handle the request.
	Supports(ctx context.Context, req *AuthRequest) bool

	// Authenticate validates credentials and returns a result.
	// Returns (result, nil) for success/failure, (nil, error) for internal errors.
	Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error)
}

// AuthOptions are per-attempt options supplied by the host.
type AuthOptions struct {
	// BadRequestMessage replaces the default "Missing credentials" message
	// reported when required fields are absent.
	BadRequestMessage string
}

// AuthRequest contains the information needed for authentication.
type AuthRequest struct {
	// Headers contains HTTP headers.
	Headers map[string][]string

	// Body is the decoded request body. Values are strings or nested maps.
	Body map[string]any

	// Query is the decoded query string. Values are strings or nested maps.
	Query map[string]any

	// Resource is the target resource (optional, for context).
	Resource string

	// Metadata contains additional request metadata.
	Metadata map[string]any

	// HTTP is the original request, if the attempt came from net/http.
	HTTP *http.Request

	// Options holds per-attempt options.
	Options AuthOptions
}

// GetHeader returns the first value for a header, or empty string.
func (r *AuthRequest) GetHeader(key string) string {
	if r.Headers == nil {
		return ""
	}
	values := r.Headers[key]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Info carries diagnostic details reported alongside an outcome.
type Info struct {
	// Message is a human readable explanation.
	Message string

	// Data holds any additional values supplied by the verify callback.
	Data map[string]any
}

// AuthResult is the result of an authentication attempt.
type AuthResult struct {
	// Authenticated is true if authentication succeeded.
	Authenticated bool

	// Identity is the authenticated identity (only if Authenticated=true).
	Identity *Identity

	// Info is forwarded unchanged from the verify callback, or describes
	// why credentials were rejected.
	Info *Info

	// StatusCode is the suggested HTTP status for failures. Zero means the
	// authenticator did not pick one.
	StatusCode int

	// Error is the authentication error (only if Authenticated=false).
	Error error

	// Method indicates which authenticator method was used.
	Method string
}

// Message returns the info message, or empty string.
func (r *AuthResult) Message() string {
	if r.Info == nil {
		return ""
	}
	return r.Info.Message
}

// WithInfo sets the result info and returns the result.
func (r *AuthResult) WithInfo(info *Info) *AuthResult {
	r.Info = info
	return r
}

// WithStatus sets the suggested status code and returns the result.
func (r *AuthResult) WithStatus(code int) *AuthResult {
	r.StatusCode = code
	return r
}

// AuthSuccess creates a successful authentication result.
func AuthSuccess(identity *Identity, info *Info) *AuthResult {
	r := &AuthResult{
		Authenticated: true,
		Identity:      identity,
		Info:          info,
	}
	if identity != nil {
		r.Method = string(identity.Method)
	}
	return r
}

// AuthFailure creates a failed authentication result.
func AuthFailure(err error, method string) *AuthResult {
	return &AuthResult{
		Authenticated: false,
		Error:         err,
		Method:        method,
	}
}

// AuthenticatorFunc is an adapter to allow use of ordinary functions as Authenticators.
type AuthenticatorFunc struct {
	name     string
	supports func(ctx context.Context, req *AuthRequest) bool
	auth     func(ctx context.Context, req *AuthRequest) (*AuthResult, error)
}

// Name returns the authenticator name.
func (f *AuthenticatorFunc) Name() string {
	return f.name
}

// Supports returns true if this authenticator can handle the request.
// A nil supports function accepts every request.
func (f *AuthenticatorFunc) Supports(ctx context.Context, req *AuthRequest) bool {
	if f.supports == nil {
		return true
	}
	return f.supports(ctx, req)
}

// Authenticate validates credentials.
func (f *AuthenticatorFunc) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	return f.auth(ctx, req)
}

// NewAuthenticatorFunc creates an AuthenticatorFunc.
func NewAuthenticatorFunc(
	name string,
	supports func(ctx context.Context, req *AuthRequest) bool,
	auth func(ctx context.Context, req *AuthRequest) (*AuthResult, error),
) *AuthenticatorFunc {
	return &AuthenticatorFunc{
		name:     name,
		supports: supports,
		auth:     auth,
	}
}
