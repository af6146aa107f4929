package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"docqa/internal/domain"
)

// IngestRequest is a document to add to the store.
type IngestRequest struct {
	Filename string
	// FileType defaults to the filename extension.
	FileType string
	Content  string
}

// IngestResult describes a stored document.
type IngestResult struct {
	DocumentID string
	Filename   string
	Chunks     int
	Preview    string
}

// Ingest chunks, embeds and stores a document under a fresh id.
func (p *Pipeline) Ingest(ctx context.Context, req IngestRequest) (IngestResult, error) {
	rid := requestID()
	start := time.Now()

	n := utf8.RuneCountInString(req.Content)
	if n < p.opts.IngestMinChars {
		return IngestResult{}, fmt.Errorf("%w: %d < %d characters", ErrDocumentTooShort, n, p.opts.IngestMinChars)
	}
	fileType := req.FileType
	if fileType == "" {
		fileType = strings.TrimPrefix(strings.ToLower(filepath.Ext(req.Filename)), ".")
	}
	doc := domain.Document{
		ID:      uuid.NewString(),
		Content: req.Content,
		Attributes: map[string]string{
			domain.AttrFilename:   req.Filename,
			domain.AttrUploadDate: p.now().UTC().Format(time.RFC3339),
			domain.AttrFileSize:   strconv.Itoa(len(req.Content)),
			domain.AttrFileType:   fileType,
		},
	}
	log := p.logger.WithCorrelationId(rid)
	log.Info().
		Str("document_id", doc.ID).
		Str("filename", req.Filename).
		Int("chars", n).
		Msg("Ingest started")

	if p.summarizer != nil {
		summary, err := p.summarizer.Summarize(req.Content, p.opts.PreviewSentences)
		if err != nil {
			log.Warn().Err(err).Msg("Preview failed")
		} else {
			doc.Attributes[domain.AttrPreview] = summary
		}
	}

	chunks, err := p.chunker.Chunk(doc)
	if err != nil {
		return IngestResult{}, fmt.Errorf("chunk document: %w", err)
	}
	embedded := make([]domain.EmbeddedChunk, len(chunks))
	for i, c := range chunks {
		vec, err := p.embedder.Embed(ctx, c.Text)
		if err != nil {
			return IngestResult{}, &domain.EmbeddingError{Embedder: p.embedder.Name(), Err: fmt.Errorf("chunk %d: %w", i, err)}
		}
		embedded[i] = domain.EmbeddedChunk{Chunk: c, Vector: vec, Attributes: doc.Attributes}
	}
	if err := p.store.Put(ctx, doc, embedded); err != nil {
		return IngestResult{}, fmt.Errorf("store document: %w", err)
	}

	log.Info().
		Str("document_id", doc.ID).
		Int("chunks", len(chunks)).
		Str("duration", time.Since(start).String()).
		Msg("Ingest complete")
	return IngestResult{
		DocumentID: doc.ID,
		Filename:   req.Filename,
		Chunks:     len(chunks),
		Preview:    doc.Attributes[domain.AttrPreview],
	}, nil
}
