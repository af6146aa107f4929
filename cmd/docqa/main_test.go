package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	original := version
	version = "test-version-1.0.0"
	defer func() { version = original }()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "docqa version test-version-1.0.0")
}

func TestChunkCmd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 1200)), 0o644))

	out, err := execute(t, "--config", filepath.Join(dir, "absent.yaml"), "chunk", path, "--size", "500", "--overlap", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "chunk 1/3  [0:500]")
	assert.Contains(t, out, "chunk 2/3  [450:950]")
	assert.Contains(t, out, "chunk 3/3  [900:1200]")
	assert.Contains(t, out, "Total: 3 chunks (size=500 overlap=50)")
}

func TestIngestAndListWithSQLite(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "docqa.yaml")
	dbPath := filepath.Join(dir, "docs.db")
	require.NoError(t, os.WriteFile(cfgPath, []byte("vector_store:\n  type: sqlite\n  path: "+dbPath+"\n"), 0o644))

	doc := filepath.Join(dir, "policy.md")
	require.NoError(t, os.WriteFile(doc, []byte("# Policy\n\nRecords are retained for seven years and then destroyed by the records team."), 0o644))

	out, err := execute(t, "--config", cfgPath, "ingest", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "policy.md")
	assert.Contains(t, out, "(1 chunks)")

	out, err = execute(t, "--config", cfgPath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "policy.md")
	assert.Contains(t, out, "Total: 1 documents")

	_, err = execute(t, "--config", cfgPath, "delete", "no-such-id")
	assert.Error(t, err)
}
