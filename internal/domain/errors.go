package domain

import "fmt"

// EmbeddingError wraps a failure reported by an Embedder.
type EmbeddingError struct {
	Embedder string
	Err      error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed (%s): %v", e.Embedder, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// GenerationError wraps a failure reported by a Generator.
type GenerationError struct {
	Generator string
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Generator, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
