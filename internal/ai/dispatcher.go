// Package ai routes a conversation to one of several LLM vendors and
// normalizes the reply.
//
// The Dispatcher owns one Backend per provider tag and a Registry holding one
// lazily built client per vendor. Dispatch is safe for concurrent use; the
// only shared state is the Registry, whose clients are read-only once built.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shutterplan/internal/observe"
)

// DefaultMaxTokens caps generated tokens when Options.MaxTokens is zero.
const DefaultMaxTokens = 4096

// Options configures a Dispatcher. The zero value is usable.
type Options struct {
	// SystemPrompt replaces DefaultSystemPrompt as the process-wide default.
	SystemPrompt string

	// MaxTokens caps generated tokens per call.
	MaxTokens int

	// BaseURLs overrides vendor API endpoints (proxies, tests).
	BaseURLs map[Provider]string

	// Getenv reads credentials; defaults to os.Getenv.
	Getenv func(string) string

	Metrics *observe.Metrics
	Logger  *slog.Logger
}

// Dispatcher sends conversations to vendors. Construct with NewDispatcher.
type Dispatcher struct {
	clients      *Registry
	backends     map[Provider]Backend
	systemPrompt string
	metrics      *observe.Metrics
	logger       *slog.Logger
}

// NewDispatcher returns a Dispatcher with a backend for every supported provider.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Logger == nil {
		opts.Logger = observe.Logger()
	}

	clients := NewRegistry(opts.Getenv)
	d := &Dispatcher{
		clients:      clients,
		backends:     make(map[Provider]Backend, len(Providers)),
		systemPrompt: opts.SystemPrompt,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
	}

	d.Register(&openAIBackend{clients: clients, baseURL: opts.BaseURLs[ProviderOpenAI], maxTokens: opts.MaxTokens})
	d.Register(&anthropicBackend{clients: clients, baseURL: opts.BaseURLs[ProviderAnthropic], maxTokens: opts.MaxTokens})
	d.Register(&deepSeekBackend{clients: clients, baseURL: opts.BaseURLs[ProviderDeepSeek], maxTokens: opts.MaxTokens})
	d.Register(&geminiBackend{clients: clients, baseURL: opts.BaseURLs[ProviderGoogle], maxTokens: opts.MaxTokens})
	return d
}

// Register installs b for its provider tag, replacing any previous backend.
// It must be called before the Dispatcher is shared between goroutines.
func (d *Dispatcher) Register(b Backend) {
	d.backends[b.Provider()] = b
}

// Registry exposes the shared vendor client registry.
func (d *Dispatcher) Registry() *Registry {
	return d.clients
}

// SystemPrompt returns the process-wide default system prompt.
func (d *Dispatcher) SystemPrompt() string {
	return d.systemPrompt
}

// IsAvailable reports whether the credential for model's provider is set.
// It never constructs a client.
func (d *Dispatcher) IsAvailable(model ModelConfig) bool {
	_, ok := d.clients.Credential(model.Provider)
	return ok
}

// Dispatch sends messages to model's vendor and returns the normalized reply.
//
// systemPromptOverride replaces the default system prompt when non-empty.
// An unknown provider tag fails with ErrUnknownProvider before any client is
// acquired; a missing credential fails with *ConfigError. Vendor errors are
// wrapped with the vendor name and otherwise returned as-is; there is no
// retry or fallback.
func (d *Dispatcher) Dispatch(ctx context.Context, model ModelConfig, messages []Message, systemPromptOverride string) (LLMResponse, error) {
	start := time.Now()

	backend, ok := d.backends[model.Provider]
	if !ok {
		return LLMResponse{}, fmt.Errorf("%w %q (model %q)", ErrUnknownProvider, model.Provider, model.ID)
	}
	if len(messages) == 0 {
		return LLMResponse{}, ErrNoMessages
	}

	systemPrompt := d.systemPrompt
	if systemPromptOverride != "" {
		systemPrompt = systemPromptOverride
	}

	c, err := backend.Complete(ctx, model, messages, systemPrompt)
	elapsed := time.Since(start)

	if err != nil {
		d.metrics.RecordDispatch(ctx, string(model.Provider), model.ID, errorStatus(err), elapsed.Seconds(), nil, nil)
		d.log(ctx).Warn("dispatch failed",
			"provider", model.Provider,
			"model", model.ID,
			"latency_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return LLMResponse{}, err
	}

	d.metrics.RecordDispatch(ctx, string(model.Provider), model.ID, "ok", elapsed.Seconds(), c.InputTokens, c.OutputTokens)
	d.log(ctx).Debug("dispatch complete",
		"provider", model.Provider,
		"model", model.ID,
		"latency_ms", elapsed.Milliseconds(),
	)

	return LLMResponse{
		Text:         c.Text,
		Model:        model.Name,
		LatencyMs:    elapsed.Milliseconds(),
		InputTokens:  c.InputTokens,
		OutputTokens: c.OutputTokens,
	}, nil
}

func (d *Dispatcher) log(ctx context.Context) *slog.Logger {
	if id := observe.RequestID(ctx); id != "" {
		return d.logger.With("request_id", id)
	}
	return d.logger
}

func errorStatus(err error) string {
	var cfgErr *ConfigError
	switch {
	case errors.As(err, &cfgErr):
		return "config_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
