package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
)

func TestSplit_InvalidParams(t *testing.T) {
	tests := []struct {
		name          string
		size, overlap int
	}{
		{"zero size", 0, 0},
		{"negative overlap", 100, -1},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split("some text", tt.size, tt.overlap)
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}

func TestSplit_ShortTextIsOneChunk(t *testing.T) {
	inputs := []string{"x", "  padded text  ", strings.Repeat("a", 500), "Hello. World! Done?"}
	for _, in := range inputs {
		spans, err := Split(in, 500, 50)
		require.NoError(t, err)
		require.Len(t, spans, 1)
		assert.Equal(t, in, spans[0].Text)
		assert.Equal(t, 0, spans[0].Start)
		assert.Equal(t, len([]rune(in)), spans[0].End)
	}
}

func TestSplit_EmptyAndBlank(t *testing.T) {
	for _, in := range []string{"", "   \n\t "} {
		spans, err := Split(in, 500, 50)
		require.NoError(t, err)
		assert.Empty(t, spans)
	}
}

func TestSplit_ThousandTwoHundredRunes(t *testing.T) {
	text := strings.Repeat("x", 1200)
	spans, err := Split(text, 500, 50)
	require.NoError(t, err)
	require.Len(t, spans, 3)

	assert.Equal(t, Span{Text: text[0:500], Start: 0, End: 500}, spans[0])
	assert.Equal(t, Span{Text: text[450:950], Start: 450, End: 950}, spans[1])
	assert.Equal(t, Span{Text: text[900:1200], Start: 900, End: 1200}, spans[2])

	for i := 1; i < len(spans); i++ {
		assert.Equal(t, 50, spans[i-1].End-spans[i].Start, "overlap between %d and %d", i-1, i)
	}
}

func TestSplit_CutsAtSentenceBoundaryPastMidpoint(t *testing.T) {
	text := strings.Repeat("a", 300) + ". " + strings.Repeat("b", 600)
	spans, err := Split(text, 500, 50)
	require.NoError(t, err)
	require.NotEmpty(t, spans)

	assert.Equal(t, 301, spans[0].End)
	assert.True(t, strings.HasSuffix(spans[0].Text, "."))
	assert.Equal(t, 251, spans[1].Start)
}

func TestSplit_IgnoresBoundaryBeforeMidpoint(t *testing.T) {
	text := strings.Repeat("a", 100) + ". " + strings.Repeat("b", 900)
	spans, err := Split(text, 500, 50)
	require.NoError(t, err)
	assert.Equal(t, 500, spans[0].End)
}

func TestSplit_MarkerPriority(t *testing.T) {
	// "? " appears later in the window but ". " is tried first.
	text := strings.Repeat("a", 300) + ". " + strings.Repeat("b", 100) + "? " + strings.Repeat("c", 500)
	spans, err := Split(text, 500, 0)
	require.NoError(t, err)
	assert.Equal(t, 301, spans[0].End)
}

func TestSplit_OffsetsCoverSource(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 80) +
		"Is it done? Yes!\nIt is finished.\n" + strings.Repeat("Trailing words without stops ", 30)
	runes := []rune(text)

	spans, err := Split(text, 300, 40)
	require.NoError(t, err)
	require.Greater(t, len(spans), 1)

	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, len(runes), spans[len(spans)-1].End)
	for i, sp := range spans {
		assert.Greater(t, sp.End, sp.Start)
		assert.LessOrEqual(t, sp.End-sp.Start, 300)
		assert.Equal(t, strings.TrimSpace(string(runes[sp.Start:sp.End])), sp.Text)
		if i > 0 {
			prev := spans[i-1]
			assert.Equal(t, 40, prev.End-sp.Start, "chunks %d and %d must overlap", i-1, i)
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("Sentence one is here. Another follows!\n", 60)
	a, err := Split(text, 250, 25)
	require.NoError(t, err)
	b, err := Split(text, 250, 25)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSplit_TerminatesWithLargeOverlap(t *testing.T) {
	// The boundary cut leaves a window shorter than the overlap; the scan
	// must still advance.
	text := strings.Repeat("a", 60) + ". " + strings.Repeat("b", 200)
	spans, err := Split(text, 100, 90)
	require.NoError(t, err)
	require.NotEmpty(t, spans)
	for i := 1; i < len(spans); i++ {
		assert.Greater(t, spans[i].Start, spans[i-1].Start)
		assert.Greater(t, spans[i-1].End, spans[i].Start, "chunks %d and %d must overlap", i-1, i)
	}
	assert.Equal(t, len([]rune(text)), spans[len(spans)-1].End)
}

func TestSplit_ShortCutKeepsOverlap(t *testing.T) {
	text := "abcdef. ghijklmnopqrstuvwxyz" + strings.Repeat("x", 20)
	spans, err := Split(text, 10, 8)
	require.NoError(t, err)
	require.Greater(t, len(spans), 1)

	assert.Equal(t, Span{Text: "abcdef.", Start: 0, End: 7}, spans[0])
	assert.Equal(t, 1, spans[1].Start)
	for i := 1; i < len(spans); i++ {
		prev, cur := spans[i-1], spans[i]
		shared := prev.End - cur.Start
		assert.GreaterOrEqual(t, shared, min(8, prev.End-prev.Start-1), "chunks %d and %d", i-1, i)
		assert.Positive(t, shared)
	}
	assert.Equal(t, len([]rune(text)), spans[len(spans)-1].End)
}

func TestSplit_CountsRunesNotBytes(t *testing.T) {
	text := strings.Repeat("é", 1200)
	spans, err := Split(text, 500, 50)
	require.NoError(t, err)
	require.Len(t, spans, 3)
	assert.Equal(t, 500, len([]rune(spans[0].Text)))
	assert.Equal(t, 1200, spans[2].End)
}

func TestBoundaryChunker_Chunk(t *testing.T) {
	c, err := NewBoundaryChunker(500, 0)
	require.NoError(t, err)
	assert.Equal(t, 500, c.Size())
	assert.Equal(t, 0, c.Overlap())

	// The middle window is blank and must be dropped.
	doc := domain.Document{
		ID:      "doc-1",
		Content: strings.Repeat("a", 500) + strings.Repeat(" ", 500) + strings.Repeat("b", 200),
	}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	for i, ch := range chunks {
		assert.Equal(t, "doc-1", ch.DocumentID)
		assert.Equal(t, i, ch.Index)
		assert.Equal(t, 2, ch.Total)
	}
	assert.Equal(t, "doc-1_chunk_0", chunks[0].ChunkID)
	assert.Equal(t, "doc-1_chunk_1", chunks[1].ChunkID)
	assert.Equal(t, 1000, chunks[1].Start)
	assert.Equal(t, strings.Repeat("b", 200), chunks[1].Text)
}

func TestNewBoundaryChunker_Invalid(t *testing.T) {
	_, err := NewBoundaryChunker(50, 50)
	assert.ErrorIs(t, err, ErrInvalidParams)
}
