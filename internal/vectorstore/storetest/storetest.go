// Package storetest is a conformance suite run against every DocumentStore
// implementation.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
	"docqa/internal/vectorstore"
)

// Factory opens a fresh, empty store.
type Factory func(t *testing.T) domain.DocumentStore

// Document builds a document with n embedded chunks of dimension 3.
func Document(id, filename string, uploaded time.Time, n int) (domain.Document, []domain.EmbeddedChunk) {
	doc := domain.Document{
		ID:      id,
		Content: fmt.Sprintf("content of %s", id),
		Attributes: map[string]string{
			domain.AttrFilename:   filename,
			domain.AttrUploadDate: uploaded.UTC().Format(time.RFC3339),
			domain.AttrFileSize:   "1234",
			domain.AttrFileType:   "txt",
		},
	}
	chunks := make([]domain.EmbeddedChunk, n)
	for i := range chunks {
		chunks[i] = domain.EmbeddedChunk{
			Chunk: domain.Chunk{
				DocumentID: id,
				ChunkID:    fmt.Sprintf("%s_chunk_%d", id, i),
				Text:       fmt.Sprintf("chunk %d of %s", i, id),
				Index:      i,
				Total:      n,
				Start:      i * 10,
				End:        i*10 + 15,
			},
			Vector:     []float64{float64(i + 1), 0.5, -0.25},
			Attributes: doc.Attributes,
		}
	}
	return doc, chunks
}

// Run exercises put, filtered reads, listing and deletion.
func Run(t *testing.T, open Factory) {
	ctx := context.Background()
	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("empty", func(t *testing.T) {
		s := open(t)
		chunks, err := s.Chunks(ctx, domain.ChunkFilter{})
		require.NoError(t, err)
		assert.Empty(t, chunks)

		docs, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, docs)

		deleted, err := s.Delete(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("put and read back", func(t *testing.T) {
		s := open(t)
		docA, chunksA := Document("doc-a", "a.txt", t0, 3)
		docB, chunksB := Document("doc-b", "b.md", t0.Add(time.Hour), 2)
		require.NoError(t, s.Put(ctx, docA, chunksA))
		require.NoError(t, s.Put(ctx, docB, chunksB))

		all, err := s.Chunks(ctx, domain.ChunkFilter{})
		require.NoError(t, err)
		require.Len(t, all, 5)
		vectorstore.SortChunks(all)
		assert.Equal(t, chunksA[0].Chunk, all[0].Chunk)
		assert.Equal(t, chunksA[0].Vector, all[0].Vector)
		assert.Equal(t, "a.txt", all[0].Attributes[domain.AttrFilename])
		assert.Equal(t, "a.txt (Chunk 1/3)", all[0].Label())
		assert.Equal(t, chunksB[1].Chunk, all[4].Chunk)

		onlyB, err := s.Chunks(ctx, domain.ChunkFilter{DocumentID: "doc-b"})
		require.NoError(t, err)
		require.Len(t, onlyB, 2)
		for _, c := range onlyB {
			assert.Equal(t, "doc-b", c.DocumentID)
		}

		none, err := s.Chunks(ctx, domain.ChunkFilter{DocumentID: "doc-z"})
		require.NoError(t, err)
		assert.Empty(t, none)

		docs, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "doc-b", docs[0].ID, "newest first")
		assert.Equal(t, domain.DocumentSummary{
			ID:         "doc-a",
			Filename:   "a.txt",
			UploadDate: t0,
			FileSize:   1234,
			FileType:   "txt",
			Chunks:     3,
		}, docs[1])
	})

	t.Run("put replaces", func(t *testing.T) {
		s := open(t)
		doc, chunks := Document("doc-a", "a.txt", t0, 3)
		require.NoError(t, s.Put(ctx, doc, chunks))
		doc, chunks = Document("doc-a", "a2.txt", t0, 1)
		require.NoError(t, s.Put(ctx, doc, chunks))

		got, err := s.Chunks(ctx, domain.ChunkFilter{DocumentID: "doc-a"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "a2.txt", got[0].Attributes[domain.AttrFilename])
	})

	t.Run("delete", func(t *testing.T) {
		s := open(t)
		docA, chunksA := Document("doc-a", "a.txt", t0, 2)
		docB, chunksB := Document("doc-b", "b.txt", t0, 2)
		require.NoError(t, s.Put(ctx, docA, chunksA))
		require.NoError(t, s.Put(ctx, docB, chunksB))

		deleted, err := s.Delete(ctx, "doc-a")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = s.Delete(ctx, "doc-a")
		require.NoError(t, err)
		assert.False(t, deleted)

		all, err := s.Chunks(ctx, domain.ChunkFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		for _, c := range all {
			assert.Equal(t, "doc-b", c.DocumentID)
		}
		docs, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "doc-b", docs[0].ID)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		s := open(t)
		doc, chunks := Document("doc-a", "a.txt", t0, 2)
		chunks[1].Vector = []float64{1}
		assert.ErrorIs(t, s.Put(ctx, doc, chunks), vectorstore.ErrInvalidDocument)

		_, chunks = Document("doc-a", "a.txt", t0, 1)
		chunks[0].DocumentID = "other"
		assert.ErrorIs(t, s.Put(ctx, doc, chunks), vectorstore.ErrInvalidDocument)

		_, chunks = Document("", "a.txt", t0, 1)
		assert.ErrorIs(t, s.Put(ctx, domain.Document{}, chunks), vectorstore.ErrInvalidDocument)

		empty, _ := Document("doc-empty", "e.txt", t0, 0)
		assert.ErrorIs(t, s.Put(ctx, empty, nil), vectorstore.ErrInvalidDocument)

		docs, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}
