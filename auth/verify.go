package auth

import (
	"context"
	"sync"
)

// VerifyFunc checks a username, challenge and signature.
//
// Return an identity to accept the credentials, a nil identity to reject
// them (info is reported as-is), or an error when verification could not
// be carried out.
type VerifyFunc func(ctx context.Context, username, challenge, signature string) (*Identity, *Info, error)

// VerifyRequestFunc is a VerifyFunc that also receives the request.
type VerifyRequestFunc func(ctx context.Context, req *AuthRequest, username, challenge, signature string) (*Identity, *Info, error)

// DoneFunc reports the outcome of a callback-style verification.
type DoneFunc func(err error, identity *Identity, info *Info)

// CallbackFunc is a verify callback that reports through done, either before
// returning or later from another goroutine.
type CallbackFunc func(username, challenge, signature string, done DoneFunc)

// CallbackRequestFunc is a CallbackFunc that also receives the request.
type CallbackRequestFunc func(req *AuthRequest, username, challenge, signature string, done DoneFunc)

// FromCallback adapts a callback-style verifier to a VerifyFunc.
//
// Only the first call to done counts. While waiting, the returned function
// honors ctx and returns ctx.Err() if it is done first; the verifier itself
// keeps running.
func FromCallback(fn CallbackFunc) VerifyFunc {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context, username, challenge, signature string) (*Identity, *Info, error) {
		c := newContinuation()
		fn(username, challenge, signature, c.done)
		return c.wait(ctx)
	}
}

// FromRequestCallback adapts a callback-style verifier to a VerifyRequestFunc.
func FromRequestCallback(fn CallbackRequestFunc) VerifyRequestFunc {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context, req *AuthRequest, username, challenge, signature string) (*Identity, *Info, error) {
		c := newContinuation()
		fn(req, username, challenge, signature, c.done)
		return c.wait(ctx)
	}
}

type verdict struct {
	identity *Identity
	info     *Info
	err      error
}

type continuation struct {
	once sync.Once
	ch   chan verdict
}

func newContinuation() *continuation {
	return &continuation{ch: make(chan verdict, 1)}
}

func (c *continuation) done(err error, identity *Identity, info *Info) {
	c.once.Do(func() {
		c.ch <- verdict{identity: identity, info: info, err: err}
	})
}

func (c *continuation) wait(ctx context.Context) (*Identity, *Info, error) {
	// a synchronous completion wins over an already cancelled ctx
	select {
	case v := <-c.ch:
		return v.identity, v.info, v.err
	default:
	}

	select {
	case v := <-c.ch:
		return v.identity, v.info, v.err
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}
