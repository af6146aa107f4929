// Package guidelines holds the reference passages injected into analysis
// prompts. The corpus is embedded once when the index is built and is
// read-only afterwards, so an Index is safe for concurrent use.
package guidelines

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"docqa/internal/domain"
	"docqa/internal/retrieval"
)

// DefaultTopK is the number of guidelines retrieved per analysis.
const DefaultTopK = 2

//go:embed guidelines.yaml
var defaultCorpus []byte

// Guideline is one reference passage.
type Guideline struct {
	Name string `yaml:"name"`
	Text string `yaml:"text"`
}

type corpusFile struct {
	Guidelines []Guideline `yaml:"guidelines"`
}

// Default returns the built-in guideline corpus.
func Default() ([]Guideline, error) {
	return parse(defaultCorpus)
}

// LoadFile reads a guideline corpus from a YAML file.
func LoadFile(path string) ([]Guideline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read guidelines: %w", err)
	}
	return parse(data)
}

func parse(data []byte) ([]Guideline, error) {
	var f corpusFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse guidelines: %w", err)
	}
	out := make([]Guideline, 0, len(f.Guidelines))
	for _, g := range f.Guidelines {
		g.Text = strings.TrimSpace(g.Text)
		if g.Text == "" {
			continue
		}
		out = append(out, g)
	}
	if len(out) == 0 {
		return nil, errors.New("guideline corpus is empty")
	}
	return out, nil
}

// Index is a guideline corpus with precomputed embeddings.
type Index struct {
	embedder   domain.Embedder
	candidates []retrieval.Candidate[Guideline]
	logger     arbor.ILogger
}

// NewIndex embeds every guideline with embedder.
func NewIndex(ctx context.Context, embedder domain.Embedder, corpus []Guideline, logger arbor.ILogger) (*Index, error) {
	start := time.Now()
	candidates := make([]retrieval.Candidate[Guideline], 0, len(corpus))
	for _, g := range corpus {
		vec, err := embedder.Embed(ctx, g.Text)
		if err != nil {
			return nil, &domain.EmbeddingError{Embedder: embedder.Name(), Err: fmt.Errorf("guideline %q: %w", g.Name, err)}
		}
		candidates = append(candidates, retrieval.Candidate[Guideline]{Ref: g, Vector: vec})
	}
	logger.Info().
		Int("guidelines", len(candidates)).
		Str("embedder", embedder.Name()).
		Str("took", time.Since(start).String()).
		Msg("Guideline index ready")
	return &Index{embedder: embedder, candidates: candidates, logger: logger}, nil
}

// Len returns the number of indexed guidelines.
func (ix *Index) Len() int { return len(ix.candidates) }

// Top returns the k guidelines most similar to text, best first.
func (ix *Index) Top(ctx context.Context, text string, k int) ([]Guideline, error) {
	if k <= 0 || len(ix.candidates) == 0 {
		return []Guideline{}, nil
	}
	vec, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, &domain.EmbeddingError{Embedder: ix.embedder.Name(), Err: err}
	}
	if len(vec) != len(ix.candidates[0].Vector) {
		return nil, fmt.Errorf("%w: query %d, guidelines %d", retrieval.ErrDimensionMismatch, len(vec), len(ix.candidates[0].Vector))
	}
	scored := retrieval.Rank(vec, ix.candidates, k)
	out := make([]Guideline, len(scored))
	for i, s := range scored {
		out[i] = s.Ref
	}
	ix.logger.Debug().Int("returned", len(out)).Msg("Guidelines retrieved")
	return out, nil
}
