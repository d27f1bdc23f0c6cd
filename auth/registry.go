package auth

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// AuthenticatorFactory creates an authenticator from configuration.
type AuthenticatorFactory func(cfg map[string]any) (Authenticator, error)

// Registry holds named strategies and the factories that build them.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Authenticator
	factories  map[string]AuthenticatorFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Authenticator),
		factories:  make(map[string]AuthenticatorFactory),
	}
}

// Use registers a strategy under its own name.
func (r *Registry) Use(a Authenticator) error {
	if a == nil {
		return errors.New("invalid strategy registration")
	}
	return r.UseAs(a.Name(), a)
}

// UseAs registers a strategy under the given name.
func (r *Registry) UseAs(name string, a Authenticator) error {
	if name == "" || a == nil {
		return errors.New("invalid strategy registration")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[name]; exists {
		return fmt.Errorf("strategy %q already registered", name)
	}

	r.strategies[name] = a
	return nil
}

// Unuse removes a strategy. Removing an unknown name is a no-op.
func (r *Registry) Unuse(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.strategies, name)
}

// Get returns the strategy registered under name.
func (r *Registry) Get(name string) (Authenticator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.strategies[name]
	return a, ok
}

// Names returns registered strategy names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Chain builds a Chain over the named strategies, in the given order.
func (r *Registry) Chain(names ...string) (*Chain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auths := make([]Authenticator, 0, len(names))
	for _, name := range names {
		a, ok := r.strategies[name]
		if !ok {
			return nil, fmt.Errorf("strategy %q not found", name)
		}
		auths = append(auths, a)
	}
	return NewChain(auths...), nil
}

// RegisterFactory adds an authenticator factory.
func (r *Registry) RegisterFactory(name string, factory AuthenticatorFactory) error {
	if name == "" || factory == nil {
		return errors.New("invalid factory registration")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("factory %q already registered", name)
	}

	r.factories[name] = factory
	return nil
}

// Create instantiates an authenticator by factory name.
func (r *Registry) Create(name string, cfg map[string]any) (Authenticator, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("factory %q not found", name)
	}

	return factory(cfg)
}

// Factories returns registered factory names.
func (r *Registry) Factories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the process-wide strategy registry.
var DefaultRegistry = NewRegistry()

// ChallengeFactory returns a factory building challenge authenticators that
// share the given verify callback.
//
// Recognized keys: username_field, challenge_field, signature_field.
func ChallengeFactory(verify VerifyFunc) AuthenticatorFactory {
	return func(cfg map[string]any) (Authenticator, error) {
		config, err := ChallengeConfigFromMap(cfg)
		if err != nil {
			return nil, err
		}
		a, err := NewChallengeAuthenticatorWithConfig(config, verify)
		if err != nil {
			return nil, err
		}
		return a, nil
	}
}

// ChallengeConfigFromMap reads a ChallengeConfig from a generic map.
// Unknown keys are ignored; known keys must hold strings.
func ChallengeConfigFromMap(cfg map[string]any) (ChallengeConfig, error) {
	config := ChallengeConfig{}

	keys := []struct {
		key  string
		dest *string
	}{
		{"username_field", &config.UsernameField},
		{"challenge_field", &config.ChallengeField},
		{"signature_field", &config.SignatureField},
	}
	for _, k := range keys {
		v, ok := cfg[k.key]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return ChallengeConfig{}, fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidConfig, k.key, v)
		}
		*k.dest = s
	}

	return config, nil
}
