// Package embedding holds the Embedder adapters: a local feature-hashing
// embedder and remote OpenAI-compatible and Gemini clients.
package embedding

import (
	"context"
	"sync"

	"docqa/internal/domain"
)

// Serialized wraps an Embedder whose backend is not safe for concurrent
// use. Calls are made one at a time.
type Serialized struct {
	mu    sync.Mutex
	inner domain.Embedder
}

// NewSerialized returns e guarded by a mutex.
func NewSerialized(e domain.Embedder) *Serialized {
	return &Serialized{inner: e}
}

func (s *Serialized) Name() string { return s.inner.Name() }

// Embed forwards to the wrapped embedder while holding the lock.
func (s *Serialized) Embed(ctx context.Context, text string) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Embed(ctx, text)
}
