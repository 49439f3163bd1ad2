package ai

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CredentialEnv maps each provider to the environment variable holding its API key.
var CredentialEnv = map[Provider]string{
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderDeepSeek:  "DEEPSEEK_API_KEY",
	ProviderGoogle:    "GEMINI_API_KEY",
}

// ClientFactory builds a vendor client from its API key.
type ClientFactory func(ctx context.Context, apiKey string) (any, error)

// Registry holds one vendor client per provider for the life of the process.
//
// A client is built on first use from the provider's credential; concurrent
// first use is collapsed into a single construction. Once stored, a client is
// shared read-only and never torn down. A failed construction (including a
// missing credential) is not cached, so the next call tries again.
//
// Construction runs detached from the first caller's cancellation, since the
// client outlives that call and concurrent waiters share its result.
type Registry struct {
	getenv func(string) string

	group   singleflight.Group
	mu      sync.RWMutex
	clients map[Provider]any
}

// NewRegistry returns an empty Registry. getenv defaults to os.Getenv.
func NewRegistry(getenv func(string) string) *Registry {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &Registry{
		getenv:  getenv,
		clients: make(map[Provider]any),
	}
}

// Credential returns the trimmed credential for p and whether it is set.
func (r *Registry) Credential(p Provider) (string, bool) {
	env, ok := CredentialEnv[p]
	if !ok {
		return "", false
	}
	key := strings.TrimSpace(r.getenv(env))
	return key, key != ""
}

// Has reports whether a client for p has been constructed.
func (r *Registry) Has(p Provider) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[p]
	return ok
}

// Acquire returns the cached client for p, building it with build on first use.
func (r *Registry) Acquire(ctx context.Context, p Provider, build ClientFactory) (any, error) {
	if c, ok := r.cached(p); ok {
		return c, nil
	}

	v, err, _ := r.group.Do(string(p), func() (any, error) {
		if c, ok := r.cached(p); ok {
			return c, nil
		}

		key, ok := r.Credential(p)
		if !ok {
			return nil, &ConfigError{Provider: p, EnvVar: CredentialEnv[p]}
		}

		c, err := build(context.WithoutCancel(ctx), key)
		if err != nil {
			return nil, fmt.Errorf("%s: create client: %w", p, err)
		}

		r.mu.Lock()
		r.clients[p] = c
		r.mu.Unlock()
		return c, nil
	})
	return v, err
}

func (r *Registry) cached(p Provider) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[p]
	return c, ok
}

// acquireAs is Acquire with the client type asserted.
func acquireAs[T any](ctx context.Context, r *Registry, p Provider, build ClientFactory) (T, error) {
	var zero T
	c, err := r.Acquire(ctx, p, build)
	if err != nil {
		return zero, err
	}
	typed, ok := c.(T)
	if !ok {
		return zero, fmt.Errorf("%s: cached client has type %T", p, c)
	}
	return typed, nil
}
