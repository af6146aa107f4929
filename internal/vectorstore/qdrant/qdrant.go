package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"docqa/internal/domain"
	"docqa/internal/vectorstore"
)

// pointNamespace derives stable point ids from chunk ids.
var pointNamespace = uuid.MustParse("6f1c2e9a-4b7d-4c55-9a8e-2f3d1b0c7e41")

const scrollPageSize = 256

// Storage is a minimal REST client to Qdrant used as a DocumentStore.
// The collection is created on first write with the dimension of the
// incoming vectors. Vectors are stored with Dot distance so Qdrant keeps them
// unnormalized; ranking happens outside the store.
type Storage struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
	logger     arbor.ILogger

	mu    sync.Mutex
	ready bool
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config, logger arbor.ILogger) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if cfg.Collection == "" {
		cfg.Collection = "docqa"
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type point struct {
	ID      string         `json:"id"`
	Vector  []float64      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

type filter struct {
	Must []condition `json:"must,omitempty"`
}

type condition struct {
	Key   string `json:"key"`
	Match struct {
		Value any `json:"value"`
	} `json:"match"`
}

func match(key string, value any) condition {
	c := condition{Key: key}
	c.Match.Value = value
	return c
}

// PointID returns the Qdrant point id for a chunk id.
func PointID(chunkID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(chunkID)).String()
}

// exists reports whether the collection is present, caching a positive answer.
func (s *Storage) exists(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return true, nil
	}
	status, err := s.do(ctx, http.MethodGet, s.collectionURL(""), nil, nil)
	if err != nil {
		if status == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	s.ready = true
	return true, nil
}

// ensureCollection creates the collection and its payload index if missing.
func (s *Storage) ensureCollection(ctx context.Context, dimension int) error {
	ok, err := s.exists(ctx)
	if err != nil || ok {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Dot",
		},
	}
	if _, err := s.do(ctx, http.MethodPut, s.collectionURL(""), body, nil); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	index := map[string]any{"field_name": "document_id", "field_schema": "keyword"}
	if _, err := s.do(ctx, http.MethodPut, s.collectionURL("/index?wait=true"), index, nil); err != nil {
		return fmt.Errorf("create payload index: %w", err)
	}
	s.ready = true
	s.logger.Info().Str("collection", s.collection).Int("dimension", dimension).Msg("Qdrant collection created")
	return nil
}

// Put replaces every point of doc with the given chunks.
func (s *Storage) Put(ctx context.Context, doc domain.Document, chunks []domain.EmbeddedChunk) error {
	if err := vectorstore.CheckPut(doc, chunks); err != nil {
		return err
	}
	if err := s.ensureCollection(ctx, len(chunks[0].Vector)); err != nil {
		return err
	}
	if err := s.deleteDocument(ctx, doc.ID); err != nil {
		return err
	}
	attrs := vectorstore.CopyAttributes(doc.Attributes)
	points := make([]point, len(chunks))
	for i, c := range chunks {
		points[i] = point{
			ID:     PointID(c.ChunkID),
			Vector: c.Vector,
			Payload: map[string]any{
				"document_id": c.DocumentID,
				"chunk_id":    c.ChunkID,
				"index":       c.Index,
				"total":       c.Total,
				"start":       c.Start,
				"end":         c.End,
				"text":        c.Text,
				"attributes":  attrs,
			},
		}
	}
	body := map[string]any{"points": points}
	if _, err := s.do(ctx, http.MethodPut, s.collectionURL("/points?wait=true"), body, nil); err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}
	return nil
}

// Chunks scrolls every point matching filter.
func (s *Storage) Chunks(ctx context.Context, f domain.ChunkFilter) ([]domain.EmbeddedChunk, error) {
	var qf *filter
	if !f.IsZero() {
		qf = &filter{Must: []condition{match("document_id", f.DocumentID)}}
	}
	points, err := s.scroll(ctx, qf, true)
	if err != nil {
		return nil, err
	}
	out := make([]domain.EmbeddedChunk, 0, len(points))
	for _, p := range points {
		out = append(out, toChunk(p))
	}
	vectorstore.SortChunks(out)
	return out, nil
}

// Delete removes every point of the document.
func (s *Storage) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := s.exists(ctx)
	if err != nil || !ok {
		return false, err
	}
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	body := map[string]any{
		"filter": filter{Must: []condition{match("document_id", id)}},
		"exact":  true,
	}
	if _, err := s.do(ctx, http.MethodPost, s.collectionURL("/points/count"), body, &resp); err != nil {
		return false, fmt.Errorf("count points: %w", err)
	}
	if resp.Result.Count == 0 {
		return false, nil
	}
	if err := s.deleteDocument(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// List derives document summaries from the first chunk of each document.
func (s *Storage) List(ctx context.Context) ([]domain.DocumentSummary, error) {
	points, err := s.scroll(ctx, &filter{Must: []condition{match("index", 0)}}, false)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DocumentSummary, 0, len(points))
	for _, p := range points {
		c := toChunk(p)
		out = append(out, vectorstore.Summarize(c.DocumentID, c.Attributes, c.Total))
	}
	vectorstore.SortSummaries(out)
	return out, nil
}

func (s *Storage) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *Storage) deleteDocument(ctx context.Context, id string) error {
	body := map[string]any{"filter": filter{Must: []condition{match("document_id", id)}}}
	if _, err := s.do(ctx, http.MethodPost, s.collectionURL("/points/delete?wait=true"), body, nil); err != nil {
		return fmt.Errorf("delete points of %s: %w", id, err)
	}
	return nil
}

func (s *Storage) scroll(ctx context.Context, f *filter, withVector bool) ([]point, error) {
	ok, err := s.exists(ctx)
	if err != nil || !ok {
		return nil, err
	}
	var out []point
	var offset any
	for {
		body := map[string]any{
			"limit":        scrollPageSize,
			"with_payload": true,
			"with_vector":  withVector,
		}
		if f != nil {
			body["filter"] = f
		}
		if offset != nil {
			body["offset"] = offset
		}
		var resp struct {
			Result struct {
				Points         []point `json:"points"`
				NextPageOffset any     `json:"next_page_offset"`
			} `json:"result"`
		}
		if _, err := s.do(ctx, http.MethodPost, s.collectionURL("/points/scroll"), body, &resp); err != nil {
			return nil, fmt.Errorf("scroll points: %w", err)
		}
		out = append(out, resp.Result.Points...)
		if resp.Result.NextPageOffset == nil {
			return out, nil
		}
		offset = resp.Result.NextPageOffset
	}
}

func toChunk(p point) domain.EmbeddedChunk {
	c := domain.EmbeddedChunk{Vector: p.Vector, Attributes: map[string]string{}}
	if v, ok := p.Payload["document_id"].(string); ok {
		c.DocumentID = v
	}
	if v, ok := p.Payload["chunk_id"].(string); ok {
		c.ChunkID = v
	}
	if v, ok := p.Payload["text"].(string); ok {
		c.Text = v
	}
	c.Index = intField(p.Payload, "index")
	c.Total = intField(p.Payload, "total")
	c.Start = intField(p.Payload, "start")
	c.End = intField(p.Payload, "end")
	if attrs, ok := p.Payload["attributes"].(map[string]any); ok {
		for k, v := range attrs {
			if s, ok := v.(string); ok {
				c.Attributes[k] = s
			}
		}
	}
	return c
}

func intField(payload map[string]any, key string) int {
	if v, ok := payload[key].(float64); ok {
		return int(v)
	}
	return 0
}

func (s *Storage) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.url, s.collection, suffix)
}

// do sends a JSON request and decodes the response into out when non-nil.
// The HTTP status is returned alongside any error.
func (s *Storage) do(ctx context.Context, method, url string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("qdrant %s %s failed: %s %s", method, url, resp.Status, bytes.TrimSpace(msg))
	}
	if out != nil {
		return resp.StatusCode, json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode, nil
}
