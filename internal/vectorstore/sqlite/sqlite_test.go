package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"docqa/internal/domain"
	"docqa/internal/vectorstore/storetest"
)

func TestStorage_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.DocumentStore {
		s, err := Open(filepath.Join(t.TempDir(), "docs.db"), arbor.NewLogger())
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestStorage_InMemory(t *testing.T) {
	s, err := Open(":memory:", arbor.NewLogger())
	require.NoError(t, err)
	defer s.Close()
	docs, err := s.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestVectorCodec(t *testing.T) {
	v := []float64{0, 1.5, -2.25, 1e-300}
	got, err := DecodeVector(EncodeVector(v))
	require.NoError(t, err)
	assert.Equal(t, v, got)

	_, err = DecodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}
