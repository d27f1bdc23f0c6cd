package auth

import (
	"errors"
	"fmt"
)

// Construction errors. Both wrap ErrInvalidArgument.
var (
	ErrInvalidArgument = errors.New("auth: invalid argument")

	// ErrMissingVerifier is returned when no verify callback is supplied.
	ErrMissingVerifier = fmt.Errorf("%w: challenge strategy requires a verify callback", ErrInvalidArgument)

	// ErrInvalidConfig is returned for a malformed configuration.
	ErrInvalidConfig = fmt.Errorf("%w: invalid configuration", ErrInvalidArgument)
)

// Authentication errors, reported through AuthResult.Error.
var (
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)

// ErrMalformedFieldPath is returned by ParseFieldPath.
var ErrMalformedFieldPath = errors.New("auth: malformed field path")

// PanicError wraps a non-error value recovered from a verify callback panic.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("auth: verify callback panicked: %v", e.Value)
}

var errNilResult = errors.New("auth: authenticator returned no result")
