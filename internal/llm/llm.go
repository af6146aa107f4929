// Package llm contains the Generator adapters: Gemini, Claude and any
// OpenAI-compatible chat completions endpoint.
package llm

import (
	"context"
	"sync"
	"time"

	"docqa/internal/domain"
)

// Options are the sampling settings shared by every adapter.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// withTimeout bounds a single generation call when a timeout is configured.
func (o Options) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, o.Timeout)
}

// Serialized wraps a Generator whose backend must not be called
// concurrently.
type Serialized struct {
	mu    sync.Mutex
	inner domain.Generator
}

// NewSerialized returns g guarded by a mutex.
func NewSerialized(g domain.Generator) *Serialized {
	return &Serialized{inner: g}
}

func (s *Serialized) Name() string { return s.inner.Name() }

func (s *Serialized) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Generate(ctx, prompt)
}
