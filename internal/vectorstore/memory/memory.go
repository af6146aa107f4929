package memory

import (
	"context"
	"sync"

	"docqa/internal/domain"
	"docqa/internal/vectorstore"
)

type entry struct {
	doc    domain.Document
	chunks []domain.EmbeddedChunk
}

// Storage is a simple in-memory document store. Safe for concurrent use.
type Storage struct {
	mu   sync.RWMutex
	docs map[string]entry
}

func NewStorage() *Storage { return &Storage{docs: make(map[string]entry)} }

// Put stores doc and its chunks, replacing any previous version.
func (s *Storage) Put(_ context.Context, doc domain.Document, chunks []domain.EmbeddedChunk) error {
	if err := vectorstore.CheckPut(doc, chunks); err != nil {
		return err
	}
	doc.Attributes = vectorstore.CopyAttributes(doc.Attributes)
	stored := make([]domain.EmbeddedChunk, len(chunks))
	for i, c := range chunks {
		c.Vector = append([]float64(nil), c.Vector...)
		c.Attributes = doc.Attributes
		stored[i] = c
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = entry{doc: doc, chunks: stored}
	return nil
}

// Chunks returns every stored chunk matching filter.
func (s *Storage) Chunks(_ context.Context, filter domain.ChunkFilter) ([]domain.EmbeddedChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.EmbeddedChunk
	if !filter.IsZero() {
		if e, ok := s.docs[filter.DocumentID]; ok {
			out = append(out, e.chunks...)
		}
		return out, nil
	}
	for _, e := range s.docs {
		out = append(out, e.chunks...)
	}
	vectorstore.SortChunks(out)
	return out, nil
}

// Delete removes a document; it reports false when the id is unknown.
func (s *Storage) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return false, nil
	}
	delete(s.docs, id)
	return true, nil
}

func (s *Storage) List(_ context.Context) ([]domain.DocumentSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.DocumentSummary, 0, len(s.docs))
	for id, e := range s.docs {
		out = append(out, vectorstore.Summarize(id, e.doc.Attributes, len(e.chunks)))
	}
	vectorstore.SortSummaries(out)
	return out, nil
}

func (s *Storage) Close() error { return nil }
