package qdrant

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"docqa/internal/domain"
	"docqa/internal/vectorstore/storetest"
)

// fakeQdrant implements the subset of the Qdrant REST API used by Storage.
type fakeQdrant struct {
	mu        sync.Mutex
	created   bool
	distance  string
	points    map[string]point
	pageSize  int
	requests  []string
	apiKeySet bool
}

func newFakeQdrant() *fakeQdrant {
	return &fakeQdrant{points: map[string]point{}, pageSize: 2}
}

func (f *fakeQdrant) matches(p point, flt *filter) bool {
	if flt == nil {
		return true
	}
	for _, c := range flt.Must {
		if fmt.Sprint(p.Payload[c.Key]) != fmt.Sprint(c.Match.Value) {
			return false
		}
	}
	return true
}

func (f *fakeQdrant) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	if r.Header.Get("api-key") != "" {
		f.apiKeySet = true
	}

	path := strings.TrimPrefix(r.URL.Path, "/collections/test")
	write := func(v any) { _ = json.NewEncoder(w).Encode(map[string]any{"result": v, "status": "ok"}) }

	switch {
	case path == "" && r.Method == http.MethodGet:
		if !f.created {
			http.Error(w, `{"status":{"error":"Not found"}}`, http.StatusNotFound)
			return
		}
		write(map[string]any{"status": "green"})
	case path == "" && r.Method == http.MethodPut:
		var body struct {
			Vectors struct {
				Distance string `json:"distance"`
			} `json:"vectors"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.created = true
		f.distance = body.Vectors.Distance
		write(true)
	case path == "/index" && r.Method == http.MethodPut:
		write(map[string]any{"status": "completed"})
	case !f.created:
		http.Error(w, `{"status":{"error":"Not found"}}`, http.StatusNotFound)
	case path == "/points" && r.Method == http.MethodPut:
		var body struct {
			Points []point `json:"points"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, p := range body.Points {
			f.points[p.ID] = p
		}
		write(map[string]any{"status": "completed"})
	case path == "/points/delete":
		var body struct {
			Filter *filter `json:"filter"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for id, p := range f.points {
			if f.matches(p, body.Filter) {
				delete(f.points, id)
			}
		}
		write(map[string]any{"status": "completed"})
	case path == "/points/count":
		var body struct {
			Filter *filter `json:"filter"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		n := 0
		for _, p := range f.points {
			if f.matches(p, body.Filter) {
				n++
			}
		}
		write(map[string]any{"count": n})
	case path == "/points/scroll":
		var body struct {
			Filter     *filter `json:"filter"`
			Offset     *string `json:"offset"`
			WithVector bool    `json:"with_vector"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		ids := make([]string, 0, len(f.points))
		for id, p := range f.points {
			if f.matches(p, body.Filter) {
				ids = append(ids, id)
			}
		}
		sort.Strings(ids)
		start := 0
		if body.Offset != nil {
			start = sort.SearchStrings(ids, *body.Offset)
		}
		end := start + f.pageSize
		var next any
		if end < len(ids) {
			next = ids[end]
		} else {
			end = len(ids)
		}
		page := make([]point, 0, end-start)
		for _, id := range ids[start:end] {
			p := f.points[id]
			if !body.WithVector {
				p.Vector = nil
			}
			page = append(page, p)
		}
		write(map[string]any{"points": page, "next_page_offset": next})
	default:
		http.Error(w, "unsupported", http.StatusBadRequest)
	}
}

func newStorage(t *testing.T, fake *fakeQdrant) *Storage {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewStorage(Config{URL: srv.URL, APIKey: "secret", Collection: "test"}, arbor.NewLogger())
}

func TestStorage_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.DocumentStore {
		return newStorage(t, newFakeQdrant())
	})
}

func TestStorage_CreatesCollectionOnFirstPut(t *testing.T) {
	fake := newFakeQdrant()
	s := newStorage(t, fake)

	docs, err := s.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.False(t, fake.created)

	doc, chunks := storetest.Document("doc-a", "a.txt", fakeTime, 5)
	require.NoError(t, s.Put(t.Context(), doc, chunks))
	assert.True(t, fake.created)
	assert.Equal(t, "Dot", fake.distance)
	assert.True(t, fake.apiKeySet)

	// five points with a page size of two forces three scroll pages
	got, err := s.Chunks(t.Context(), domain.ChunkFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

var fakeTime = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

func TestPointID_Stable(t *testing.T) {
	assert.Equal(t, PointID("doc_chunk_0"), PointID("doc_chunk_0"))
	assert.NotEqual(t, PointID("doc_chunk_0"), PointID("doc_chunk_1"))
}
