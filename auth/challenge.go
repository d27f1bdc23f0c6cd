package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ChallengeStrategyName is the name the challenge strategy registers under.
const ChallengeStrategyName = "challenge"

// DefaultBadRequestMessage is reported when a required field is missing.
const DefaultBadRequestMessage = "Missing credentials"

// ChallengeConfig configures the challenge authenticator.
type ChallengeConfig struct {
	// UsernameField is the field holding the username.
	// Default: "username"
	UsernameField string

	// ChallengeField is the field holding the challenge.
	// Default: "challenge"
	ChallengeField string

	// SignatureField is the field holding the signature.
	// Default: "signature"
	SignatureField string

	// PassReqToCallback forwards the request to the verify callback.
	// Set by NewChallengeAuthenticatorWithRequest.
	PassReqToCallback bool
}

func (c ChallengeConfig) withDefaults() ChallengeConfig {
	if c.UsernameField == "" {
		c.UsernameField = "username"
	}
	if c.ChallengeField == "" {
		c.ChallengeField = "challenge"
	}
	if c.SignatureField == "" {
		c.SignatureField = "signature"
	}
	return c
}

// Validate checks that every field key is a well-formed field path.
// Empty keys are accepted and replaced by their defaults at construction.
func (c ChallengeConfig) Validate() error {
	fields := []struct{ name, key string }{
		{"username field", c.UsernameField},
		{"challenge field", c.ChallengeField},
		{"signature field", c.SignatureField},
	}
	for _, f := range fields {
		if f.key == "" {
			continue
		}
		if _, err := ParseFieldPath(f.key); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, f.name, err)
		}
	}
	return nil
}

// ChallengeAuthenticator authenticates requests carrying a username, a
// challenge and a signature over that challenge. Checking the signature is
// left to the verify callback.
type ChallengeAuthenticator struct {
	config        ChallengeConfig
	verify        VerifyFunc
	verifyRequest VerifyRequestFunc
}

// NewChallengeAuthenticator creates a challenge authenticator with default
// field names.
func NewChallengeAuthenticator(verify VerifyFunc) (*ChallengeAuthenticator, error) {
	return NewChallengeAuthenticatorWithConfig(ChallengeConfig{}, verify)
}

// NewChallengeAuthenticatorWithConfig creates a challenge authenticator
// with custom field names.
func NewChallengeAuthenticatorWithConfig(config ChallengeConfig, verify VerifyFunc) (*ChallengeAuthenticator, error) {
	if verify == nil {
		return nil, ErrMissingVerifier
	}
	if config.PassReqToCallback {
		return nil, fmt.Errorf("%w: PassReqToCallback requires a VerifyRequestFunc", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &ChallengeAuthenticator{
		config: config.withDefaults(),
		verify: verify,
	}, nil
}

// NewChallengeAuthenticatorWithRequest creates a challenge authenticator
// whose verify callback also receives the request.
func NewChallengeAuthenticatorWithRequest(config ChallengeConfig, verify VerifyRequestFunc) (*ChallengeAuthenticator, error) {
	if verify == nil {
		return nil, ErrMissingVerifier
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.PassReqToCallback = true
	return &ChallengeAuthenticator{
		config:        config.withDefaults(),
		verifyRequest: verify,
	}, nil
}

// Name returns "challenge".
func (a *ChallengeAuthenticator) Name() string {
	return ChallengeStrategyName
}

// Config returns the effective configuration.
func (a *ChallengeAuthenticator) Config() ChallengeConfig {
	return a.config
}

// Supports returns true if the request carries at least one of the
// challenge fields.
func (a *ChallengeAuthenticator) Supports(_ context.Context, req *AuthRequest) bool {
	if req == nil {
		return false
	}
	for _, field := range []string{a.config.UsernameField, a.config.ChallengeField, a.config.SignatureField} {
		if _, ok := LookupFirst(field, req.Body, req.Query); ok {
			return true
		}
	}
	return false
}

// Authenticate extracts the credentials and runs the verify callback.
//
// Missing fields produce a failure with status 400 without calling the
// callback. A callback error, or a panic inside the callback, is returned
// as the error. A nil identity produces a failure carrying the callback's
// info.
func (a *ChallengeAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	if req == nil {
		req = &AuthRequest{}
	}

	username, okUser := LookupFirst(a.config.UsernameField, req.Body, req.Query)
	challenge, okChallenge := LookupFirst(a.config.ChallengeField, req.Body, req.Query)
	signature, okSignature := LookupFirst(a.config.SignatureField, req.Body, req.Query)

	if !okUser || !okChallenge || !okSignature {
		msg := req.Options.BadRequestMessage
		if msg == "" {
			msg = DefaultBadRequestMessage
		}
		return AuthFailure(ErrMissingCredentials, ChallengeStrategyName).
			WithInfo(&Info{Message: msg}).
			WithStatus(http.StatusBadRequest), nil
	}

	identity, info, err := a.invoke(ctx, req, username, challenge, signature)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return AuthFailure(ErrInvalidCredentials, ChallengeStrategyName).WithInfo(info), nil
	}

	result := AuthSuccess(identity, info)
	if result.Method == "" {
		result.Method = string(AuthMethodChallenge)
	}
	return result, nil
}

// AuthenticateWithOptions runs Authenticate with per-attempt options.
// The request is copied; the caller's value is not modified.
func (a *ChallengeAuthenticator) AuthenticateWithOptions(ctx context.Context, req *AuthRequest, opts AuthOptions) (*AuthResult, error) {
	r := AuthRequest{}
	if req != nil {
		r = *req
	}
	r.Options = opts
	return a.Authenticate(ctx, &r)
}

func (a *ChallengeAuthenticator) invoke(ctx context.Context, req *AuthRequest, username, challenge, signature string) (identity *Identity, info *Info, err error) {
	defer func() {
		if r := recover(); r != nil {
			identity, info = nil, nil
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = &PanicError{Value: r}
		}
	}()

	if a.config.PassReqToCallback {
		identity, info, err = a.verifyRequest(ctx, req, username, challenge, signature)
	} else {
		identity, info, err = a.verify(ctx, username, challenge, signature)
	}
	return identity, info, err
}

// IsMissingCredentials reports whether result is a missing-credentials failure.
func IsMissingCredentials(result *AuthResult) bool {
	return result != nil && !result.Authenticated && errors.Is(result.Error, ErrMissingCredentials)
}

// Ensure ChallengeAuthenticator implements Authenticator
var _ Authenticator = (*ChallengeAuthenticator)(nil)
