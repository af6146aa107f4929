package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbeddedChunkLabel(t *testing.T) {
	c := EmbeddedChunk{
		Chunk:      Chunk{Index: 1, Total: 5},
		Attributes: map[string]string{AttrFilename: "notes.txt"},
	}
	assert.Equal(t, "notes.txt (Chunk 2/5)", c.Label())

	c.Attributes = nil
	assert.Equal(t, "Unknown (Chunk 2/5)", c.Label())
}

func TestChunkFilter(t *testing.T) {
	var all ChunkFilter
	assert.True(t, all.IsZero())
	assert.True(t, all.Matches(Chunk{DocumentID: "a"}))

	one := ChunkFilter{DocumentID: "a"}
	assert.False(t, one.IsZero())
	assert.True(t, one.Matches(Chunk{DocumentID: "a"}))
	assert.False(t, one.Matches(Chunk{DocumentID: "b"}))
}

func TestCollaboratorErrorsUnwrap(t *testing.T) {
	cause := errors.New("boom")

	var embErr error = &EmbeddingError{Embedder: "hashing", Err: cause}
	assert.ErrorIs(t, embErr, cause)
	assert.Contains(t, embErr.Error(), "hashing")

	var genErr error = &GenerationError{Generator: "gemini", Err: cause}
	var target *GenerationError
	assert.True(t, errors.As(genErr, &target))
	assert.Equal(t, "gemini", target.Generator)
}

func TestDocumentFilename(t *testing.T) {
	assert.Equal(t, "Unknown", Document{}.Filename())
	assert.Equal(t, "a.md", Document{Attributes: map[string]string{AttrFilename: "a.md"}}.Filename())
}
