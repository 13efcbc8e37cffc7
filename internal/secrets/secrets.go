// Package secrets resolves provider credentials at startup. Backends are
// registered by configuration name so deployments pick one without the rest
// of the code knowing which store is behind it.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrSecretNotFound means the backend has no value under the requested name.
var ErrSecretNotFound = errors.New("secret not found")

// Retriever resolves a named secret to its value.
type Retriever interface {
	Get(ctx context.Context, name string) (string, error)
}

// Options carries backend-specific settings to constructors.
type Options struct {
	GCPProjectID string
}

// Constructor builds a retriever from options.
type Constructor func(ctx context.Context, opts Options) (Retriever, error)

var registry = map[string]Constructor{
	"local": func(context.Context, Options) (Retriever, error) {
		return Local{}, nil
	},
	"gcp": func(ctx context.Context, opts Options) (Retriever, error) {
		return NewGoogleCloud(ctx, opts.GCPProjectID)
	},
}

// New builds the retriever registered under the backend name.
func New(ctx context.Context, backend string, opts Options) (Retriever, error) {
	construct, ok := registry[backend]
	if !ok {
		return nil, fmt.Errorf("unsupported secrets backend: %s", backend)
	}
	return construct(ctx, opts)
}

// Local reads secrets from environment variables.
type Local struct{}

// Get returns the environment variable's value.
func (Local) Get(_ context.Context, name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("environment variable %s: %w", name, ErrSecretNotFound)
	}
	return value, nil
}
