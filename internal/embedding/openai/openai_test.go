package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, url string, retries int) *Client {
	t.Helper()
	c, err := NewClient(Config{BaseURL: url, APIKey: "test-key", Model: "m", MaxRetries: retries})
	require.NoError(t, err)
	return c
}

func TestEmbed_WithoutKeySendsNoAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header["Authorization"]
		assert.False(t, present)
		_, _ = w.Write([]byte(`{"embedding":[0.5,0.5]}`))
	}))
	defer srv.Close()

	t.Setenv("DOCQA_TEST_EMPTY_KEY", "")
	c, err := NewClient(Config{BaseURL: srv.URL, APIKeyEnv: "DOCQA_TEST_EMPTY_KEY", Model: "nomic-embed-text"})
	require.NoError(t, err)
	v, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, v)
}

func TestNewClient_KeyFromEnv(t *testing.T) {
	t.Setenv("DOCQA_TEST_KEY", "from-env")
	c, err := NewClient(Config{APIKeyEnv: "DOCQA_TEST_KEY"})
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.apiKey)
	assert.Equal(t, "text-embedding-3-small", c.model)
}

func TestEmbed_OpenAIShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["input"])
		assert.Equal(t, "m", body["model"])
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	v, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, v)
	assert.Equal(t, 3, c.Dimension())
}

func TestEmbed_OllamaShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embedding":[1,2]}`))
	}))
	defer srv.Close()

	v, err := newTestClient(t, srv.URL, 0).Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, v)
}

func TestEmbed_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"embedding":[1]}]}`))
	}))
	defer srv.Close()

	v, err := newTestClient(t, srv.URL, 2).Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, v)
	assert.Equal(t, int32(2), calls.Load())
}

func TestEmbed_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, 3).Embed(context.Background(), "x")
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEmbed_DimensionChange(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			_, _ = w.Write([]byte(`{"data":[{"embedding":[1,2]}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"embedding":[1,2,3]}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	_, err := c.Embed(context.Background(), "a")
	require.NoError(t, err)
	_, err = c.Embed(context.Background(), "b")
	assert.Error(t, err)
}

func TestEmbed_EmptyPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, 0).Embed(context.Background(), "x")
	assert.EqualError(t, err, "no embedding returned")
}
