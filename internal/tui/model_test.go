package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
)

type stubAnswerer struct {
	answer     domain.Answer
	err        error
	documentID string
}

func (s *stubAnswerer) Answer(_ context.Context, _, documentID string) (domain.Answer, error) {
	s.documentID = documentID
	return s.answer, s.err
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return next.(Model)
}

func TestModel_AskFlow(t *testing.T) {
	svc := &stubAnswerer{answer: domain.Answer{
		Text: "Badger keeps keys in an LSM tree.",
		Citations: []domain.Citation{
			{SourceNumber: 1, Text: "Badger keeps keys in an LSM tree. It is fast.", Document: "badger.md (Chunk 1/2)", Score: 0.9},
			{SourceNumber: 2, Text: "Values live in a log.", Document: "badger.md (Chunk 2/2)", Score: 0.4},
		},
	}}
	m := sized(t, New(context.Background(), svc, "doc-1", "2 documents"))
	assert.Contains(t, m.View(), "No answer yet.")

	m.input.SetValue("where are keys?")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.False(t, m.busy)
	assert.Equal(t, "doc-1", svc.documentID)
	require.NotNil(t, m.answer)
	assert.Contains(t, m.renderAnswer(), "Source 1/2")
	assert.Contains(t, m.status, "2 sources")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Equal(t, 1, m.cursor)
	assert.Contains(t, m.renderAnswer(), "Source 2/2")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Equal(t, 0, m.cursor)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)
	assert.Equal(t, 1, m.cursor)
}

func TestModel_AnswerError(t *testing.T) {
	svc := &stubAnswerer{err: errors.New("generator offline")}
	m := sized(t, New(context.Background(), svc, "", ""))
	next, _ := m.Update(answerMsg{question: "q", err: svc.err})
	m = next.(Model)
	assert.Contains(t, m.status, "generator offline")
	assert.Nil(t, m.answer)
}

func TestModel_Quit(t *testing.T) {
	m := New(context.Background(), &stubAnswerer{}, "", "")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestHighlightBestSentence(t *testing.T) {
	text := "Lunch was good. Badger stores keys on disk. The end."
	got := highlightBestSentence(text, "how does badger store keys")
	assert.Contains(t, got, "Lunch was good.")
	assert.Contains(t, got, "Badger stores keys on disk.")
	assert.NotContains(t, highlightBestSentence(text, ""), "\x1b[")
}

func TestTokenOverlapScore(t *testing.T) {
	q := toTokenSet("Don’t badger me")
	assert.Equal(t, 2, tokenOverlapScore(q, "don’t BADGER badger"))
}
