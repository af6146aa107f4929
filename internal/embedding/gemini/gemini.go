package gemini

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini embedding model used when none is configured.
const DefaultModel = "gemini-embedding-001"

// Config configures the Gemini embedder.
type Config struct {
	APIKey            string
	Model             string
	Dimension         int
	RequestsPerSecond float64
	// BaseURL overrides the API endpoint.
	BaseURL string
}

// Embedder produces embeddings with the Gemini API.
type Embedder struct {
	client    *genai.Client
	model     string
	dimension int
	limiter   *rate.Limiter
}

// New creates a Gemini embedder.
func New(ctx context.Context, cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini embedder requires an API key")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = 768
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}
	e := &Embedder{client: client, model: cfg.Model, dimension: cfg.Dimension}
	if cfg.RequestsPerSecond > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return e, nil
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "gemini" }

// Dimension returns the configured output dimensionality.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed returns the embedding of text widened to float64.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	outputDim := int32(e.dimension)
	result, err := e.client.Models.EmbedContent(ctx, e.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{OutputDimensionality: &outputDim})
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}
	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, errors.New("no embedding returned from API")
	}
	values := result.Embeddings[0].Values
	if len(values) != e.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", e.dimension, len(values))
	}
	return Widen(values), nil
}

// Widen converts a float32 vector to float64.
func Widen(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
