package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownProvider means a model's provider tag has no backend. It
	// indicates a catalog/config mismatch and is never retried.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrNoMessages is returned when Dispatch is called with an empty conversation.
	ErrNoMessages = errors.New("no messages to dispatch")

	// ErrModelNotFound is returned by catalog lookups for unknown model ids.
	ErrModelNotFound = errors.New("model not found")
)

// ConfigError reports a missing vendor credential.
type ConfigError struct {
	Provider Provider
	EnvVar   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: missing credential: environment variable %s is not set", e.Provider, e.EnvVar)
}
