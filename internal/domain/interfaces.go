package domain

import (
	"context"
	"fmt"
	"time"
)

// Attribute keys stored alongside every document.
const (
	AttrFilename   = "filename"
	AttrUploadDate = "upload_date"
	AttrFileSize   = "file_size"
	AttrFileType   = "file_type"
	AttrPreview    = "preview"
)

// Document represents a single ingested text document.
type Document struct {
	ID         string
	Content    string
	Attributes map[string]string
}

// Filename returns the display name of the document, or "Unknown".
func (d Document) Filename() string {
	if name := d.Attributes[AttrFilename]; name != "" {
		return name
	}
	return "Unknown"
}

// DocumentSummary is the list projection of a stored document.
type DocumentSummary struct {
	ID         string
	Filename   string
	UploadDate time.Time
	FileSize   int
	FileType   string
	Chunks     int
}

// Chunk is a bounded, possibly overlapping segment of a document.
// Start and End are rune offsets of the window in the owning document.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Text       string
	Index      int
	Total      int
	Start      int
	End        int
}

// EmbeddedChunk is a chunk as persisted by a DocumentStore: the chunk, its
// embedding and the attributes of the owning document.
type EmbeddedChunk struct {
	Chunk
	Vector     []float64
	Attributes map[string]string
}

// Label renders the chunk for citation display, e.g. "notes.txt (Chunk 2/5)".
func (c EmbeddedChunk) Label() string {
	name := c.Attributes[AttrFilename]
	if name == "" {
		name = "Unknown"
	}
	return fmt.Sprintf("%s (Chunk %d/%d)", name, c.Index+1, c.Total)
}

// ScoredChunk is a chunk with a relevance score.
type ScoredChunk struct {
	Chunk EmbeddedChunk
	Score float64
}

// ChunkFilter restricts the chunks returned by a store. The zero value
// matches everything.
type ChunkFilter struct {
	DocumentID string
}

// IsZero reports whether the filter matches every chunk.
func (f ChunkFilter) IsZero() bool { return f.DocumentID == "" }

// Matches reports whether the chunk satisfies the filter.
func (f ChunkFilter) Matches(c Chunk) bool {
	return f.DocumentID == "" || c.DocumentID == f.DocumentID
}

// Citation is one numbered source shown next to a generated answer.
type Citation struct {
	SourceNumber int     `json:"source_number"`
	Text         string  `json:"text"`
	Document     string  `json:"document"`
	DocumentID   string  `json:"document_id"`
	Score        float64 `json:"score"`
}

// Answer is the result of a question over the stored documents.
type Answer struct {
	Text      string     `json:"answer"`
	Citations []Citation `json:"sources"`
}

// Chunker splits a document into retrieval-sized chunks.
type Chunker interface {
	Chunk(doc Document) ([]Chunk, error)
}

// Embedder converts free text into a fixed-dimension vector.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Generator turns a prompt into generated text.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// DocumentStore persists documents with their embedded chunks.
type DocumentStore interface {
	Put(ctx context.Context, doc Document, chunks []EmbeddedChunk) error
	Chunks(ctx context.Context, filter ChunkFilter) ([]EmbeddedChunk, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]DocumentSummary, error)
	Close() error
}

// Summarizer produces a brief extractive summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
