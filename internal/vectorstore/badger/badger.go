package badger

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"docqa/internal/domain"
	"docqa/internal/vectorstore"
)

// documentRecord is the persisted form of a document.
type documentRecord struct {
	ID         string `badgerhold:"key"`
	Content    string
	Attributes map[string]string
	ChunkCount int
}

// chunkRecord is the persisted form of an embedded chunk.
type chunkRecord struct {
	Key        string `badgerhold:"key"`
	DocumentID string `badgerhold:"index"`
	ChunkID    string
	Text       string
	Index      int
	Total      int
	Start      int
	End        int
	Vector     []float64
}

// Storage is a DocumentStore backed by an embedded Badger database.
type Storage struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

// Open opens or creates the database in dir.
func Open(dir string, logger arbor.ILogger) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil // Disable default badger logger to use arbor

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	logger.Debug().Str("path", dir).Msg("Badger document store opened")
	return &Storage{store: store, logger: logger}, nil
}

// Put stores doc and its chunks in one transaction, replacing any previous
// version of the document.
func (s *Storage) Put(_ context.Context, doc domain.Document, chunks []domain.EmbeddedChunk) error {
	if err := vectorstore.CheckPut(doc, chunks); err != nil {
		return err
	}
	return s.store.Badger().Update(func(tx *badger.Txn) error {
		var old []chunkRecord
		if err := s.store.TxFind(tx, &old, badgerhold.Where("DocumentID").Eq(doc.ID).Index("DocumentID")); err != nil {
			return fmt.Errorf("find previous chunks: %w", err)
		}
		for _, r := range old {
			if err := s.store.TxDelete(tx, r.Key, &chunkRecord{}); err != nil {
				return fmt.Errorf("delete previous chunk: %w", err)
			}
		}
		rec := &documentRecord{
			ID:         doc.ID,
			Content:    doc.Content,
			Attributes: vectorstore.CopyAttributes(doc.Attributes),
			ChunkCount: len(chunks),
		}
		if err := s.store.TxUpsert(tx, doc.ID, rec); err != nil {
			return fmt.Errorf("store document: %w", err)
		}
		for _, c := range chunks {
			cr := &chunkRecord{
				Key:        c.ChunkID,
				DocumentID: c.DocumentID,
				ChunkID:    c.ChunkID,
				Text:       c.Text,
				Index:      c.Index,
				Total:      c.Total,
				Start:      c.Start,
				End:        c.End,
				Vector:     c.Vector,
			}
			if err := s.store.TxUpsert(tx, cr.Key, cr); err != nil {
				return fmt.Errorf("store chunk %s: %w", c.ChunkID, err)
			}
		}
		return nil
	})
}

// Chunks returns the stored chunks matching filter, joined with their
// document attributes.
func (s *Storage) Chunks(_ context.Context, filter domain.ChunkFilter) ([]domain.EmbeddedChunk, error) {
	var records []chunkRecord
	var query *badgerhold.Query
	if !filter.IsZero() {
		query = badgerhold.Where("DocumentID").Eq(filter.DocumentID).Index("DocumentID")
	}
	if err := s.store.Find(&records, query); err != nil {
		return nil, fmt.Errorf("find chunks: %w", err)
	}

	attrs := make(map[string]map[string]string)
	out := make([]domain.EmbeddedChunk, 0, len(records))
	for _, r := range records {
		a, ok := attrs[r.DocumentID]
		if !ok {
			var doc documentRecord
			if err := s.store.Get(r.DocumentID, &doc); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
				return nil, fmt.Errorf("load document %s: %w", r.DocumentID, err)
			}
			a = vectorstore.CopyAttributes(doc.Attributes)
			attrs[r.DocumentID] = a
		}
		out = append(out, domain.EmbeddedChunk{
			Chunk: domain.Chunk{
				DocumentID: r.DocumentID,
				ChunkID:    r.ChunkID,
				Text:       r.Text,
				Index:      r.Index,
				Total:      r.Total,
				Start:      r.Start,
				End:        r.End,
			},
			Vector:     r.Vector,
			Attributes: a,
		})
	}
	vectorstore.SortChunks(out)
	return out, nil
}

// Delete removes a document and its chunks.
func (s *Storage) Delete(_ context.Context, id string) (bool, error) {
	found := true
	err := s.store.Badger().Update(func(tx *badger.Txn) error {
		var doc documentRecord
		if err := s.store.TxGet(tx, id, &doc); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				found = false
				return nil
			}
			return err
		}
		if err := s.store.TxDeleteMatching(tx, &chunkRecord{}, badgerhold.Where("DocumentID").Eq(id).Index("DocumentID")); err != nil {
			return fmt.Errorf("delete chunks: %w", err)
		}
		return s.store.TxDelete(tx, id, &documentRecord{})
	})
	if err != nil {
		return false, fmt.Errorf("delete document %s: %w", id, err)
	}
	if found {
		s.logger.Debug().Str("document_id", id).Msg("Document deleted")
	}
	return found, nil
}

func (s *Storage) List(_ context.Context) ([]domain.DocumentSummary, error) {
	var docs []documentRecord
	if err := s.store.Find(&docs, nil); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	out := make([]domain.DocumentSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, vectorstore.Summarize(d.ID, d.Attributes, d.ChunkCount))
	}
	vectorstore.SortSummaries(out)
	return out, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
