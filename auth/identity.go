package auth

import "time"

// AuthMethod indicates how authentication was performed.
type AuthMethod string

const (
	AuthMethodNone      AuthMethod = "none"
	AuthMethodChallenge AuthMethod = "challenge"
	AuthMethodAnonymous AuthMethod = "anonymous"
	AuthMethodChain     AuthMethod = "chain"
)

// Identity is the subject produced by a successful verification.
type Identity struct {
	// Principal is the unique identifier (e.g., user ID, username).
	Principal string

	// Method indicates how authentication was performed.
	Method AuthMethod

	// User is the application's own user record. It is passed through untouched.
	User any

	// Claims holds extra attributes attached by the verify callback.
	Claims map[string]any

	// ExpiresAt is when this identity expires.
	ExpiresAt time.Time

	// IssuedAt is when this identity was created.
	IssuedAt time.Time
}

// Claim returns a claim value and whether it was present.
func (id *Identity) Claim(key string) (any, bool) {
	if id.Claims == nil {
		return nil, false
	}
	v, ok := id.Claims[key]
	return v, ok
}

// IsExpired checks if the identity has expired.
func (id *Identity) IsExpired() bool {
	if id.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(id.ExpiresAt)
}

// IsAnonymous returns true if this is an anonymous identity.
func (id *Identity) IsAnonymous() bool {
	return id.Method == AuthMethodAnonymous || id.Principal == ""
}

// AnonymousIdentity creates a default anonymous identity.
func AnonymousIdentity() *Identity {
	return &Identity{
		Principal: "anonymous",
		Method:    AuthMethodAnonymous,
		Claims:    make(map[string]any),
	}
}
