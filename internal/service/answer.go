package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docqa/internal/domain"
	"docqa/internal/prompt"
)

// Answer responds to a question from the stored chunks. documentID limits
// retrieval to one document when non-empty. Citations are numbered in the
// order the sources appear in the prompt.
func (p *Pipeline) Answer(ctx context.Context, question, documentID string) (domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return domain.Answer{}, ErrEmptyQuestion
	}
	rid := requestID()
	start := time.Now()
	log := p.logger.WithCorrelationId(rid)
	log.Info().Str("question", preview(question, 60)).Str("document_id", documentID).Int("top_k", p.opts.TopK).Msg("Question received")

	results, err := p.retriever.Retrieve(ctx, question, domain.ChunkFilter{DocumentID: documentID}, p.opts.TopK)
	if err != nil {
		return domain.Answer{}, err
	}
	if len(results) == 0 {
		log.Info().Msg("No documents found")
		return domain.Answer{Text: NoDocumentsAnswer, Citations: []domain.Citation{}}, nil
	}

	sources := make([]string, len(results))
	citations := make([]domain.Citation, len(results))
	for i, r := range results {
		sources[i] = r.Chunk.Text
		citations[i] = domain.Citation{
			SourceNumber: i + 1,
			Text:         r.Chunk.Text,
			Document:     r.Chunk.Label(),
			DocumentID:   r.Chunk.DocumentID,
			Score:        r.Score,
		}
		log.Debug().Int("source", i+1).Str("document", citations[i].Document).Str("score", fmt.Sprintf("%.4f", r.Score)).Msg("Source")
	}

	pr, err := prompt.QA(question, sources)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("build qa prompt: %w", err)
	}
	text, err := p.generator.Generate(ctx, pr)
	if err != nil {
		return domain.Answer{}, &domain.GenerationError{Generator: p.generator.Name(), Err: err}
	}

	log.Info().Int("sources", len(citations)).Str("duration", time.Since(start).String()).Msg("Question answered")
	return domain.Answer{Text: strings.TrimSpace(text), Citations: citations}, nil
}
