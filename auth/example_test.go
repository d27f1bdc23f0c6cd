package auth_test

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonwraymond/challengeauth/auth"
)

// challengeIssuer hands out challenges as short-lived signed tokens and
// knows each user's public key. It stands in for the host application.
type challengeIssuer struct {
	secret []byte
	keys   map[string]ed25519.PublicKey
}

func (c *challengeIssuer) issue(username string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	})
	s, _ := token.SignedString(c.secret)
	return s
}

func (c *challengeIssuer) verify(_ context.Context, username, challenge, signature string) (*auth.Identity, *auth.Info, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(challenge, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, &auth.Info{Message: "Invalid challenge"}, nil
	}
	if claims.Subject != username {
		return nil, &auth.Info{Message: "Challenge issued to another user"}, nil
	}

	pub, ok := c.keys[username]
	if !ok {
		return nil, &auth.Info{Message: "Unknown user"}, nil
	}
	sig, err := base64.RawURLEncoding.DecodeString(signature)
	if err != nil || !ed25519.Verify(pub, []byte(challenge), sig) {
		return nil, &auth.Info{Message: "Invalid signature"}, nil
	}

	return &auth.Identity{Principal: username, IssuedAt: time.Now()}, &auth.Info{Data: map[string]any{"scope": "read"}}, nil
}

func ExampleNewChallengeAuthenticator() {
	pub, priv, _ := ed25519.GenerateKey(nil)
	issuer := &challengeIssuer{
		secret: []byte("challenge-secret"),
		keys:   map[string]ed25519.PublicKey{"johndoe": pub},
	}

	strategy, err := auth.NewChallengeAuthenticator(issuer.verify)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("Strategy:", strategy.Name())

	challenge := issuer.issue("johndoe")
	signature := base64.RawURLEncoding.EncodeToString(ed25519.Sign(priv, []byte(challenge)))

	result, _ := strategy.Authenticate(context.Background(), &auth.AuthRequest{
		Body: map[string]any{
			"username":  "johndoe",
			"challenge": challenge,
			"signature": signature,
		},
	})
	fmt.Println("Authenticated:", result.Authenticated)
	fmt.Println("Principal:", result.Identity.Principal)
	fmt.Println("Scope:", result.Info.Data["scope"])

	result, _ = strategy.Authenticate(context.Background(), &auth.AuthRequest{
		Body: map[string]any{
			"username":  "johndoe",
			"challenge": challenge,
			"signature": base64.RawURLEncoding.EncodeToString([]byte("forged")),
		},
	})
	fmt.Println("Authenticated:", result.Authenticated)
	fmt.Println("Message:", result.Message())
	// Output:
	// Strategy: challenge
	// Authenticated: true
	// Principal: johndoe
	// Scope: read
	// Authenticated: false
	// Message: Invalid signature
}

func ExampleNewChallengeAuthenticator_missingVerifier() {
	_, err := auth.NewChallengeAuthenticator(nil)
	fmt.Println(errors.Is(err, auth.ErrMissingVerifier))
	fmt.Println(errors.Is(err, auth.ErrInvalidArgument))
	// Output:
	// true
	// true
}

func ExampleNewChallengeAuthenticatorWithConfig() {
	strategy, _ := auth.NewChallengeAuthenticatorWithConfig(auth.ChallengeConfig{
		UsernameField:  "user[username]",
		ChallengeField: "user[challenge]",
		SignatureField: "user[signature]",
	}, func(_ context.Context, username, challenge, signature string) (*auth.Identity, *auth.Info, error) {
		return &auth.Identity{Principal: username}, nil, nil
	})

	result, _ := strategy.Authenticate(context.Background(), &auth.AuthRequest{
		Body: map[string]any{"user": map[string]any{"username": "johndoe"}},
		Options: auth.AuthOptions{
			BadRequestMessage: "Please sign the challenge",
		},
	})
	fmt.Println("Status:", result.StatusCode)
	fmt.Println("Message:", result.Message())
	// Output:
	// Status: 400
	// Message: Please sign the challenge
}

func ExampleFromCallback() {
	verify := auth.FromCallback(func(username, challenge, signature string, done auth.DoneFunc) {
		// complete later, as a lookup against a remote store would
		go func() {
			if signature == "johnsig" {
				done(nil, &auth.Identity{Principal: username}, nil)
				return
			}
			done(nil, nil, &auth.Info{Message: "Invalid signature"})
		}()
	})

	strategy, _ := auth.NewChallengeAuthenticator(verify)
	result, _ := strategy.Authenticate(context.Background(), &auth.AuthRequest{
		Query: map[string]any{"username": "johndoe", "challenge": "token", "signature": "johnsig"},
	})
	fmt.Println("Principal:", result.Identity.Principal)
	// Output:
	// Principal: johndoe
}

func ExampleDispatch() {
	strategy, _ := auth.NewChallengeAuthenticator(func(_ context.Context, username, challenge, signature string) (*auth.Identity, *auth.Info, error) {
		return nil, nil, errors.New("key store unavailable")
	})

	signals := auth.SignalFuncs{
		OnSuccess: func(_ context.Context, id *auth.Identity, _ *auth.Info) { fmt.Println("success:", id.Principal) },
		OnFail:    func(_ context.Context, info *auth.Info, status int) { fmt.Println("fail:", status, info.Message) },
		OnError:   func(_ context.Context, err error) { fmt.Println("error:", err) },
	}

	auth.Dispatch(context.Background(), strategy, &auth.AuthRequest{}, signals)
	auth.Dispatch(context.Background(), strategy, &auth.AuthRequest{
		Body: map[string]any{"username": "johndoe", "challenge": "token", "signature": "sig"},
	}, signals)
	// Output:
	// fail: 400 Missing credentials
	// error: key store unavailable
}

func ExampleMiddleware() {
	strategy, _ := auth.NewChallengeAuthenticator(func(_ context.Context, username, challenge, signature string) (*auth.Identity, *auth.Info, error) {
		if signature != "johnsig" {
			return nil, &auth.Info{Message: "Invalid signature"}, nil
		}
		return &auth.Identity{Principal: username}, nil, nil
	})

	handler := auth.Middleware(strategy, auth.MiddlewareOptions{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "hello %s", auth.PrincipalFromContext(r.Context()))
	}))

	form := "username=johndoe&challenge=token&signature=johnsig"
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, r)
	fmt.Println(rr.Code, rr.Body.String())

	r = httptest.NewRequest(http.MethodGet, "/login?username=johndoe", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, r)
	fmt.Println(rr.Code)
	// Output:
	// 200 hello johndoe
	// 400
}

func ExampleRegistry_Chain() {
	reg := auth.NewRegistry()
	_ = reg.RegisterFactory(auth.ChallengeStrategyName, auth.ChallengeFactory(
		func(_ context.Context, username, challenge, signature string) (*auth.Identity, *auth.Info, error) {
			return &auth.Identity{Principal: username}, nil, nil
		},
	))

	strategy, _ := reg.Create(auth.ChallengeStrategyName, map[string]any{"username_field": "login"})
	_ = reg.Use(strategy)
	fmt.Println("Registered:", reg.Names())

	chain, _ := reg.Chain(auth.ChallengeStrategyName)
	result, _ := chain.Authenticate(context.Background(), &auth.AuthRequest{
		Body: map[string]any{"login": "johndoe", "challenge": "token", "signature": "sig"},
	})
	fmt.Println("Principal:", result.Identity.Principal)
	// Output:
	// Registered: [challenge]
	// Principal: johndoe
}
