// Package chunker splits documents into overlapping segments on sentence
// boundaries for nearest-neighbour retrieval.
package chunker

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"docqa/internal/domain"
)

const (
	DefaultChunkSize = 500
	DefaultOverlap   = 50
)

// ErrInvalidParams is returned when size and overlap do not satisfy
// size > overlap >= 0.
var ErrInvalidParams = errors.New("chunker: size must be greater than overlap and overlap must not be negative")

// boundaryMarkers are tried in order; the first one found past the middle of
// the window decides the cut.
var boundaryMarkers = []string{". ", ".\n", "! ", "!\n", "? ", "?\n"}

// Span is a chunk of text with the rune offsets of the window it was cut
// from. Text is trimmed, Start and End are not.
type Span struct {
	Text  string
	Start int
	End   int
}

// Split cuts text into windows of at most size runes. Consecutive windows
// share overlap runes, or all but the first rune of a window that was cut
// shorter than overlap. Windows that do not reach the end of the text are
// shortened to the last sentence terminator past their midpoint, if any.
func Split(text string, size, overlap int) ([]Span, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w (size=%d, overlap=%d)", ErrInvalidParams, size, overlap)
	}
	runes := []rune(text)
	n := len(runes)
	if n <= size {
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}
		return []Span{{Text: text, Start: 0, End: n}}, nil
	}

	spans := make([]Span, 0, n/(size-overlap)+1)
	for start := 0; start < n; {
		end := start + size
		if end >= n {
			end = n
		} else {
			end = start + cutPoint(runes[start:end], size)
		}
		if trimmed := strings.TrimSpace(string(runes[start:end])); trimmed != "" {
			spans = append(spans, Span{Text: trimmed, Start: start, End: end})
		}
		if end == n {
			break
		}
		// a short cut can leave less than overlap runes; step by one so the
		// windows still share context
		start = max(end-overlap, start+1)
	}
	return spans, nil
}

// cutPoint returns the length of the window to keep.
func cutPoint(window []rune, size int) int {
	s := string(window)
	half := float64(size) * 0.5
	for _, marker := range boundaryMarkers {
		idx := strings.LastIndex(s, marker)
		if idx < 0 {
			continue
		}
		pos := utf8.RuneCountInString(s[:idx])
		if float64(pos) > half {
			// keep the terminator, leave the whitespace to the next window
			return pos + 1
		}
	}
	return len(window)
}

// BoundaryChunker turns documents into chunks using Split.
type BoundaryChunker struct {
	size    int
	overlap int
}

// NewBoundaryChunker validates the parameters and returns a chunker.
func NewBoundaryChunker(size, overlap int) (*BoundaryChunker, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w (size=%d, overlap=%d)", ErrInvalidParams, size, overlap)
	}
	return &BoundaryChunker{size: size, overlap: overlap}, nil
}

// Size returns the target chunk size in runes.
func (c *BoundaryChunker) Size() int { return c.size }

// Overlap returns the overlap between consecutive chunks in runes.
func (c *BoundaryChunker) Overlap() int { return c.overlap }

// Chunk splits the document content. Indices are contiguous and every chunk
// carries the total count for the document.
func (c *BoundaryChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	spans, err := Split(document.Content, c.size, c.overlap)
	if err != nil {
		return nil, err
	}
	chunks := make([]domain.Chunk, len(spans))
	for i, sp := range spans {
		chunks[i] = domain.Chunk{
			DocumentID: document.ID,
			ChunkID:    fmt.Sprintf("%s_chunk_%d", document.ID, i),
			Text:       sp.Text,
			Index:      i,
			Total:      len(spans),
			Start:      sp.Start,
			End:        sp.End,
		}
	}
	return chunks, nil
}
