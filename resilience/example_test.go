package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/challengeauth/auth"
	"github.com/jonwraymond/challengeauth/resilience"
)

func ExampleNewGuard() {
	strategy, _ := auth.NewChallengeAuthenticator(func(_ context.Context, username, challenge, signature string) (*auth.Identity, *auth.Info, error) {
		return nil, &auth.Info{Message: "Invalid signature"}, nil
	})

	limiter := resilience.NewAttemptLimiter(resilience.AttemptLimiterConfig{
		Every: time.Minute,
		Burst: 2,
	})
	guarded, _ := resilience.NewGuard(strategy,
		resilience.WithAttemptLimiter(limiter, resilience.UsernameKey("username")),
	)

	req := &auth.AuthRequest{Body: map[string]any{
		"username":  "johndoe",
		"challenge": "nonce",
		"signature": "guess",
	}}
	for i := 0; i < 3; i++ {
		result, _ := guarded.Authenticate(context.Background(), req)
		fmt.Println(result.StatusCode, result.Message())
	}
	// Output:
	// 0 Invalid signature
	// 0 Invalid signature
	// 429 Too many attempts
}

func ExampleCircuitBreaker() {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		MaxFailures:  2,
		ResetTimeout: time.Minute,
		OnStateChange: func(from, to resilience.State) {
			fmt.Printf("circuit %s -> %s\n", from, to)
		},
	})

	strategy, _ := auth.NewChallengeAuthenticator(func(_ context.Context, username, challenge, signature string) (*auth.Identity, *auth.Info, error) {
		return nil, nil, errors.New("key store unavailable")
	})
	guarded, _ := resilience.NewGuard(strategy, resilience.WithCircuitBreaker(cb))

	req := &auth.AuthRequest{Query: map[string]any{"username": "johndoe", "challenge": "nonce", "signature": "sig"}}
	for i := 0; i < 3; i++ {
		_, err := guarded.Authenticate(context.Background(), req)
		fmt.Println(err)
	}
	// Output:
	// key store unavailable
	// circuit closed -> open
	// key store unavailable
	// resilience: circuit breaker is open
}
