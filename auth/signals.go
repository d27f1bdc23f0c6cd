package auth

import "context"

// Outcome classifies an authentication attempt.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Classify maps the return values of Authenticate to an Outcome.
// A nil result without an error is treated as an error.
func Classify(result *AuthResult, err error) Outcome {
	switch {
	case err != nil, result == nil:
		return OutcomeError
	case result.Authenticated:
		return OutcomeSuccess
	default:
		return OutcomeFailure
	}
}

// Signals receives the outcome of an authentication attempt. The host
// implements it; Dispatch calls exactly one method per attempt.
type Signals interface {
	Success(ctx context.Context, identity *Identity, info *Info)
	Fail(ctx context.Context, info *Info, statusCode int)
	Error(ctx context.Context, err error)
}

// SignalFuncs adapts plain functions to Signals. Nil functions are skipped.
type SignalFuncs struct {
	OnSuccess func(ctx context.Context, identity *Identity, info *Info)
	OnFail    func(ctx context.Context, info *Info, statusCode int)
	OnError   func(ctx context.Context, err error)
}

func (s SignalFuncs) Success(ctx context.Context, identity *Identity, info *Info) {
	if s.OnSuccess != nil {
		s.OnSuccess(ctx, identity, info)
	}
}

func (s SignalFuncs) Fail(ctx context.Context, info *Info, statusCode int) {
	if s.OnFail != nil {
		s.OnFail(ctx, info, statusCode)
	}
}

func (s SignalFuncs) Error(ctx context.Context, err error) {
	if s.OnError != nil {
		s.OnError(ctx, err)
	}
}

// Dispatch runs a against req and reports the outcome on s.
func Dispatch(ctx context.Context, a Authenticator, req *AuthRequest, s Signals) Outcome {
	result, err := a.Authenticate(ctx, req)
	outcome := Classify(result, err)

	switch outcome {
	case OutcomeSuccess:
		s.Success(ctx, result.Identity, result.Info)
	case OutcomeFailure:
		s.Fail(ctx, result.Info, result.StatusCode)
	case OutcomeError:
		if err == nil {
			err = errNilResult
		}
		s.Error(ctx, err)
	}
	return outcome
}
