package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("notes.TXT"))
	assert.True(t, Supported("/a/b/readme.md"))
	assert.True(t, Supported("page.htm"))
	assert.True(t, Supported("paper.pdf"))
	assert.False(t, Supported("image.png"))
	assert.False(t, Supported("Makefile"))
}

func TestLoad_PlainText(t *testing.T) {
	path := write(t, "notes.txt", "Line one.\nLine two.\n")
	doc, err := New(arbor.NewLogger()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", doc.Filename)
	assert.Equal(t, "txt", doc.FileType)
	assert.Equal(t, "Line one.\nLine two.\n", doc.Text)
}

func TestLoad_Unsupported(t *testing.T) {
	path := write(t, "image.png", "not really")
	_, err := New(arbor.NewLogger()).Load(path)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestLoad_Missing(t *testing.T) {
	_, err := New(arbor.NewLogger()).Load(filepath.Join(t.TempDir(), "gone.md"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMarkdownText(t *testing.T) {
	src := "# Retention Policy\n\n" +
		"Records are kept for **seven** years.\nThen they are _destroyed_.\n\n" +
		"- first item\n- second item\n\n" +
		"```go\nfmt.Println(\"hi\")\n```\n\n" +
		"See [the docs](https://example.com/docs).\n"

	got := MarkdownText([]byte(src))
	assert.Contains(t, got, "Retention Policy")
	assert.Contains(t, got, "Records are kept for seven years. Then they are destroyed.")
	assert.Contains(t, got, "- first item")
	assert.Contains(t, got, "- second item")
	assert.Contains(t, got, `fmt.Println("hi")`)
	assert.Contains(t, got, "See the docs.")
	assert.NotContains(t, got, "#")
	assert.NotContains(t, got, "**")
	assert.NotContains(t, got, "\n\n\n")
}

func TestHTMLText(t *testing.T) {
	src := `<html><head><title> Quarterly Report </title><style>p { color: red; }</style></head>
<body>
<h1>Results</h1>
<p>Revenue grew by <b>12%</b> over the quarter.</p>
<script>alert("x")</script>
<ul><li>North region</li><li>South region</li></ul>
</body></html>`

	title, body, err := HTMLText([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, "Quarterly Report", title)
	assert.Contains(t, body, "Results")
	assert.Contains(t, body, "Revenue grew by 12% over the quarter.")
	assert.Contains(t, body, "North region")
	assert.NotContains(t, body, "alert")
	assert.NotContains(t, body, "color: red")
	assert.NotContains(t, body, "<p>")
}

func TestLoad_HTMLSetsTitle(t *testing.T) {
	path := write(t, "page.html", "<html><head><title>Hello</title></head><body><p>Body text here.</p></body></html>")
	doc, err := New(arbor.NewLogger()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Hello", doc.Title)
	assert.Equal(t, "html", doc.FileType)
	assert.Contains(t, doc.Text, "Body text here.")
}

func TestLoad_PDF(t *testing.T) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()
	pdf.Cell(0, 10, "The first page mentions badger.")
	pdf.AddPage()
	pdf.Cell(0, 10, "The second page (with parentheses) mentions sqlite.")

	path := filepath.Join(t.TempDir(), "paper.pdf")
	require.NoError(t, pdf.OutputFileAndClose(path))

	doc, err := New(arbor.NewLogger()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pdf", doc.FileType)
	assert.Contains(t, doc.Text, "The first page mentions badger.")
	assert.Contains(t, doc.Text, "The second page (with parentheses) mentions sqlite.")
	assert.Less(t, strings.Index(doc.Text, "badger"), strings.Index(doc.Text, "sqlite"))
}

func TestContentText(t *testing.T) {
	stream := "BT /F1 12 Tf 10 10 Td (Hello \\(world\\)) Tj ET\n" +
		"BT [(Spl) -20 (it)] TJ ET\n" +
		"q 1 0 0 1 0 0 cm Q\n" +
		"BT (caf\\351) Tj ET"
	got := contentText(stream)
	assert.Equal(t, "Hello (world)\nSplit\ncaf\xe9", got)
}
