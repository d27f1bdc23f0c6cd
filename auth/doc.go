// Package auth provides the challenge authentication strategy and the small
// set of primitives it plugs into.
//
// The challenge strategy extracts a username, a challenge and a signature
// from a request body (falling back to the query string), hands them to an
// application-supplied verify callback and reports one of three outcomes:
// success with an identity, failure with optional info, or an error. The
// package never checks signatures, issues challenges or keeps sessions; that
// belongs to the verify callback and to the host.
//
// Field names accept nested addressing ("user[username]" or "user.username")
// so that form and JSON payloads with grouped fields can be read directly.
package auth
