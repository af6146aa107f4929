package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysis(t *testing.T) {
	out, err := Analysis("The report body.", []string{"  First guideline.\n", "Second guideline."})
	require.NoError(t, err)

	assert.Contains(t, out, "ANALYSIS GUIDELINES:\n1. First guideline.\n2. Second guideline.\n")
	assert.Contains(t, out, "DOCUMENT TO ANALYZE:\n\nThe report body.\n\n---\n\nAnalyze the above document and return JSON only.")
	assert.Contains(t, out, `"completeness_status": "partial"`)
	assert.Less(t, strings.Index(out, "ANALYSIS GUIDELINES"), strings.Index(out, "DOCUMENT TO ANALYZE"))
}

func TestAnalysis_NoGuidelines(t *testing.T) {
	out, err := Analysis("doc", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "ANALYSIS GUIDELINES:\n\nIMPORTANT:")
}

func TestQA(t *testing.T) {
	out, err := QA("What is X?", []string{"X is a letter.", "X marks the spot."})
	require.NoError(t, err)

	assert.Contains(t, out, "Context from documents:\n\n[Source 1]: X is a letter.\n\n[Source 2]: X marks the spot.\n\nQuestion: What is X?\n\nAnswer:")
	assert.True(t, strings.HasPrefix(out, "You are a helpful assistant"))
	assert.True(t, strings.HasSuffix(out, "Answer:"))
}

func TestQA_TemplateCharactersPassThrough(t *testing.T) {
	out, err := QA("{{.Question}}?", []string{"<b>{{ raw }}</b>"})
	require.NoError(t, err)
	assert.Contains(t, out, "[Source 1]: <b>{{ raw }}</b>")
	assert.Contains(t, out, "Question: {{.Question}}?")
}
