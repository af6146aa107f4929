// Package vectorstore holds the DocumentStore implementations and the
// helpers they share. Stores only persist and filter; ranking happens in
// the retrieval package so every backend scores chunks the same way.
package vectorstore

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"docqa/internal/domain"
)

// ErrInvalidDocument is returned by Put for a document or chunk set that
// cannot be stored.
var ErrInvalidDocument = errors.New("invalid document")

// CheckPut validates a Put call: the document needs an id and at least one
// chunk, every chunk must belong to it and carry a vector, and all vectors
// share one dimension.
func CheckPut(doc domain.Document, chunks []domain.EmbeddedChunk) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidDocument)
	}
	if len(chunks) == 0 {
		return fmt.Errorf("%w: document %s has no chunks", ErrInvalidDocument, doc.ID)
	}
	dim := -1
	for _, c := range chunks {
		if c.DocumentID != doc.ID {
			return fmt.Errorf("%w: chunk %s belongs to %q", ErrInvalidDocument, c.ChunkID, c.DocumentID)
		}
		if len(c.Vector) == 0 {
			return fmt.Errorf("%w: chunk %s has no vector", ErrInvalidDocument, c.ChunkID)
		}
		if dim >= 0 && len(c.Vector) != dim {
			return fmt.Errorf("%w: chunk %s has dimension %d, expected %d", ErrInvalidDocument, c.ChunkID, len(c.Vector), dim)
		}
		dim = len(c.Vector)
	}
	return nil
}

// Summarize builds the list projection of a stored document.
func Summarize(id string, attrs map[string]string, chunks int) domain.DocumentSummary {
	s := domain.DocumentSummary{
		ID:       id,
		Filename: attrs[domain.AttrFilename],
		FileType: attrs[domain.AttrFileType],
		Chunks:   chunks,
	}
	if s.Filename == "" {
		s.Filename = "Unknown"
	}
	if t, err := time.Parse(time.RFC3339, attrs[domain.AttrUploadDate]); err == nil {
		s.UploadDate = t
	}
	if n, err := strconv.Atoi(attrs[domain.AttrFileSize]); err == nil {
		s.FileSize = n
	}
	return s
}

// SortSummaries orders summaries newest first, then by id.
func SortSummaries(s []domain.DocumentSummary) {
	sort.SliceStable(s, func(i, j int) bool {
		if !s[i].UploadDate.Equal(s[j].UploadDate) {
			return s[i].UploadDate.After(s[j].UploadDate)
		}
		return s[i].ID < s[j].ID
	})
}

// SortChunks orders chunks by document id and chunk index so every store
// hands candidates to the ranker in the same order.
func SortChunks(c []domain.EmbeddedChunk) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].DocumentID != c[j].DocumentID {
			return c[i].DocumentID < c[j].DocumentID
		}
		return c[i].Index < c[j].Index
	})
}

// CopyAttributes returns a copy of attrs that is never nil.
func CopyAttributes(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
