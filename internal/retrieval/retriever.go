package retrieval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"docqa/internal/domain"
)

// ErrDimensionMismatch is returned when stored vectors were produced by an
// embedder with a different dimension than the current one.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Retriever answers "most relevant chunks for a query" over a DocumentStore.
type Retriever struct {
	embedder domain.Embedder
	store    domain.DocumentStore
	logger   arbor.ILogger
}

// NewRetriever wires an embedder and a store.
func NewRetriever(embedder domain.Embedder, store domain.DocumentStore, logger arbor.ILogger) *Retriever {
	return &Retriever{embedder: embedder, store: store, logger: logger}
}

// Retrieve returns up to topK chunks most similar to query. The filter is
// applied by the store before ranking. No stored chunks is not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, filter domain.ChunkFilter, topK int) ([]domain.ScoredChunk, error) {
	if topK <= 0 {
		return []domain.ScoredChunk{}, nil
	}
	start := time.Now()

	chunks, err := r.store.Chunks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks: %w", err)
	}
	if len(chunks) == 0 {
		r.logger.Debug().Str("document_id", filter.DocumentID).Msg("No chunks to rank")
		return []domain.ScoredChunk{}, nil
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &domain.EmbeddingError{Embedder: r.embedder.Name(), Err: err}
	}

	results, err := RankChunks(vec, chunks, topK)
	if err != nil {
		return nil, err
	}

	r.logger.Debug().
		Int("candidates", len(chunks)).
		Int("top_k", topK).
		Int("results", len(results)).
		Str("duration", time.Since(start).String()).
		Msg("Ranked chunks")
	return results, nil
}

// RankChunks ranks stored chunks against an already embedded query. It
// rejects candidates whose dimension differs from the query.
func RankChunks(query []float64, chunks []domain.EmbeddedChunk, topK int) ([]domain.ScoredChunk, error) {
	candidates := make([]Candidate[domain.EmbeddedChunk], len(chunks))
	for i, ch := range chunks {
		if len(ch.Vector) != len(query) {
			return nil, fmt.Errorf("%w: chunk %s has %d, query has %d", ErrDimensionMismatch, ch.ChunkID, len(ch.Vector), len(query))
		}
		candidates[i] = Candidate[domain.EmbeddedChunk]{Ref: ch, Vector: ch.Vector}
	}
	ranked := Rank(query, candidates, topK)
	out := make([]domain.ScoredChunk, len(ranked))
	for i, s := range ranked {
		out[i] = domain.ScoredChunk{Chunk: s.Ref, Score: s.Score}
	}
	return out, nil
}
