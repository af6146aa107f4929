// Package service sequences the pipeline: ingest (chunk, embed, store),
// analyze (guidelines, prompt, generate, validate) and answer (retrieve,
// prompt, generate, cite). A Pipeline keeps no state between calls.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"docqa/internal/domain"
	"docqa/internal/guidelines"
	"docqa/internal/retrieval"
)

// NoDocumentsAnswer is returned by Answer when nothing could be retrieved.
const NoDocumentsAnswer = "I don't have any documents to answer this question. Please upload documents first."

var (
	ErrDocumentTooShort = errors.New("document too short")
	ErrDocumentTooLong  = errors.New("document too long")
	ErrEmptyQuestion    = errors.New("question is empty")
)

// GuidelineSource returns the reference passages most relevant to a text.
type GuidelineSource interface {
	Top(ctx context.Context, text string, k int) ([]guidelines.Guideline, error)
}

// Options bound the inputs and tune retrieval.
type Options struct {
	TopK             int
	GuidelineTopK    int
	IngestMinChars   int
	AnalyzeMinChars  int
	AnalyzeMaxChars  int
	PreviewSentences int
}

// DefaultOptions returns the stock limits.
func DefaultOptions() Options {
	return Options{
		TopK:             5,
		GuidelineTopK:    guidelines.DefaultTopK,
		IngestMinChars:   50,
		AnalyzeMinChars:  20,
		AnalyzeMaxChars:  10000,
		PreviewSentences: 2,
	}
}

// Deps are the collaborators a Pipeline needs. Summarizer may be nil.
type Deps struct {
	Chunker    domain.Chunker
	Embedder   domain.Embedder
	Generator  domain.Generator
	Store      domain.DocumentStore
	Guidelines GuidelineSource
	Summarizer domain.Summarizer
	Logger     arbor.ILogger
}

// Pipeline is the orchestrator behind every command.
type Pipeline struct {
	chunker    domain.Chunker
	embedder   domain.Embedder
	generator  domain.Generator
	store      domain.DocumentStore
	guidelines GuidelineSource
	summarizer domain.Summarizer
	retriever  *retrieval.Retriever
	logger     arbor.ILogger
	opts       Options
	now        func() time.Time
}

// NewPipeline wires the collaborators. Zero option values take defaults.
func NewPipeline(deps Deps, opts Options) *Pipeline {
	def := DefaultOptions()
	if opts.TopK <= 0 {
		opts.TopK = def.TopK
	}
	if opts.GuidelineTopK <= 0 {
		opts.GuidelineTopK = def.GuidelineTopK
	}
	if opts.IngestMinChars <= 0 {
		opts.IngestMinChars = def.IngestMinChars
	}
	if opts.AnalyzeMinChars <= 0 {
		opts.AnalyzeMinChars = def.AnalyzeMinChars
	}
	if opts.AnalyzeMaxChars <= 0 {
		opts.AnalyzeMaxChars = def.AnalyzeMaxChars
	}
	if opts.PreviewSentences <= 0 {
		opts.PreviewSentences = def.PreviewSentences
	}
	return &Pipeline{
		chunker:    deps.Chunker,
		embedder:   deps.Embedder,
		generator:  deps.Generator,
		store:      deps.Store,
		guidelines: deps.Guidelines,
		summarizer: deps.Summarizer,
		retriever:  retrieval.NewRetriever(deps.Embedder, deps.Store, deps.Logger),
		logger:     deps.Logger,
		opts:       opts,
		now:        time.Now,
	}
}

// Options returns the effective options.
func (p *Pipeline) Options() Options { return p.opts }

// Documents lists the stored documents, newest first.
func (p *Pipeline) Documents(ctx context.Context) ([]domain.DocumentSummary, error) {
	return p.store.List(ctx)
}

// Delete removes a document and its chunks. It reports false when the id is
// unknown.
func (p *Pipeline) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := p.store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	p.logger.Info().Str("document_id", id).Bool("deleted", deleted).Msg("Delete document")
	return deleted, nil
}

func requestID() string {
	return uuid.NewString()[:8]
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
