package sqlite

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/ternarybob/arbor"
	_ "modernc.org/sqlite"

	"docqa/internal/domain"
	"docqa/internal/vectorstore"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		attributes TEXT NOT NULL,
		chunk_count INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS chunks (
		chunk_id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		idx INTEGER NOT NULL,
		total INTEGER NOT NULL,
		start_offset INTEGER NOT NULL,
		end_offset INTEGER NOT NULL,
		embedding BLOB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id)`,
}

type documentRow struct {
	ID         string `db:"id"`
	Content    string `db:"content"`
	Attributes string `db:"attributes"`
	ChunkCount int    `db:"chunk_count"`
}

type chunkRow struct {
	ChunkID    string `db:"chunk_id"`
	DocumentID string `db:"document_id"`
	Text       string `db:"text"`
	Index      int    `db:"idx"`
	Total      int    `db:"total"`
	Start      int    `db:"start_offset"`
	End        int    `db:"end_offset"`
	Embedding  []byte `db:"embedding"`
	Attributes string `db:"attributes"`
}

// Storage is a DocumentStore backed by a SQLite file.
type Storage struct {
	db     *sqlx.DB
	logger arbor.ILogger
}

// Open opens or creates the database at path. Use ":memory:" for a
// throwaway database.
func Open(path string, logger arbor.ILogger) (*Storage, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	s := &Storage{db: db, logger: logger}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logger.Debug().Str("path", path).Msg("SQLite document store opened")
	return s, nil
}

func (s *Storage) initSchema() error {
	if _, err := s.db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return err
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

// Put stores doc and its chunks in one transaction, replacing any previous
// version of the document.
func (s *Storage) Put(ctx context.Context, doc domain.Document, chunks []domain.EmbeddedChunk) error {
	if err := vectorstore.CheckPut(doc, chunks); err != nil {
		return err
	}
	attrs, err := json.Marshal(vectorstore.CopyAttributes(doc.Attributes))
	if err != nil {
		return fmt.Errorf("encode attributes: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, doc.ID); err != nil {
		return fmt.Errorf("delete previous chunks: %w", err)
	}
	_, err = tx.NamedExecContext(ctx, `INSERT INTO documents (id, content, attributes, chunk_count)
		VALUES (:id, :content, :attributes, :chunk_count)
		ON CONFLICT(id) DO UPDATE SET content = excluded.content,
			attributes = excluded.attributes, chunk_count = excluded.chunk_count`,
		documentRow{ID: doc.ID, Content: doc.Content, Attributes: string(attrs), ChunkCount: len(chunks)})
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	for _, c := range chunks {
		_, err := tx.NamedExecContext(ctx, `INSERT INTO chunks
			(chunk_id, document_id, text, idx, total, start_offset, end_offset, embedding)
			VALUES (:chunk_id, :document_id, :text, :idx, :total, :start_offset, :end_offset, :embedding)`,
			chunkRow{
				ChunkID:    c.ChunkID,
				DocumentID: c.DocumentID,
				Text:       c.Text,
				Index:      c.Index,
				Total:      c.Total,
				Start:      c.Start,
				End:        c.End,
				Embedding:  EncodeVector(c.Vector),
			})
		if err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ChunkID, err)
		}
	}
	return tx.Commit()
}

// Chunks returns the stored chunks matching filter.
func (s *Storage) Chunks(ctx context.Context, filter domain.ChunkFilter) ([]domain.EmbeddedChunk, error) {
	query := `SELECT c.chunk_id, c.document_id, c.text, c.idx, c.total, c.start_offset, c.end_offset,
		c.embedding, d.attributes
		FROM chunks c JOIN documents d ON d.id = c.document_id`
	var args []any
	if !filter.IsZero() {
		query += ` WHERE c.document_id = ?`
		args = append(args, filter.DocumentID)
	}
	query += ` ORDER BY c.document_id, c.idx`

	var rows []chunkRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select chunks: %w", err)
	}

	attrs := make(map[string]map[string]string)
	out := make([]domain.EmbeddedChunk, 0, len(rows))
	for _, r := range rows {
		a, ok := attrs[r.DocumentID]
		if !ok {
			a = map[string]string{}
			if err := json.Unmarshal([]byte(r.Attributes), &a); err != nil {
				return nil, fmt.Errorf("decode attributes of %s: %w", r.DocumentID, err)
			}
			attrs[r.DocumentID] = a
		}
		vec, err := DecodeVector(r.Embedding)
		if err != nil {
			return nil, fmt.Errorf("decode embedding of %s: %w", r.ChunkID, err)
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
			Vector:     vec,
			Attributes: a,
		})
	}
	return out, nil
}

// Delete removes a document; its chunks go with it.
func (s *Storage) Delete(ctx context.Context, id string) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, id); err != nil {
		return false, fmt.Errorf("delete chunks: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Storage) List(ctx context.Context) ([]domain.DocumentSummary, error) {
	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, content, attributes, chunk_count FROM documents`); err != nil {
		return nil, fmt.Errorf("select documents: %w", err)
	}
	out := make([]domain.DocumentSummary, 0, len(rows))
	for _, r := range rows {
		attrs := map[string]string{}
		if err := json.Unmarshal([]byte(r.Attributes), &attrs); err != nil {
			return nil, fmt.Errorf("decode attributes of %s: %w", r.ID, err)
		}
		out = append(out, vectorstore.Summarize(r.ID, attrs, r.ChunkCount))
	}
	vectorstore.SortSummaries(out)
	return out, nil
}

func (s *Storage) Close() error { return s.db.Close() }

// EncodeVector packs a vector as little-endian float64 values.
func EncodeVector(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(x))
	}
	return buf
}

// DecodeVector reverses EncodeVector.
func DecodeVector(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("embedding blob has %d bytes, not a multiple of 8", len(b))
	}
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v, nil
}
