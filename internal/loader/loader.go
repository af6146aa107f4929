// Package loader reads documents from disk and reduces them to plain text
// for ingestion. Plain text, Markdown, HTML and PDF are supported.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
)

// ErrUnsupported is returned for file types the loader cannot read.
var ErrUnsupported = errors.New("unsupported file type")

// Document is the text content of a file.
type Document struct {
	Filename string
	// FileType is the lower-case extension without the dot.
	FileType string
	Title    string
	Text     string
}

// Loader dispatches on file extension.
type Loader struct {
	logger arbor.ILogger
}

// New creates a loader.
func New(logger arbor.ILogger) *Loader {
	return &Loader{logger: logger}
}

// Extensions lists the extensions Load accepts.
func Extensions() []string {
	return []string{".txt", ".md", ".markdown", ".html", ".htm", ".pdf"}
}

// Supported reports whether Load accepts the path's extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions() {
		if e == ext {
			return true
		}
	}
	return false
}

// Load reads the file at path and extracts its text.
func (l *Loader) Load(path string) (Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	doc := Document{
		Filename: filepath.Base(path),
		FileType: strings.TrimPrefix(ext, "."),
	}
	if !Supported(path) {
		return doc, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}

	if ext == ".pdf" {
		text, err := PDFText(path)
		if err != nil {
			return doc, err
		}
		doc.Text = text
		l.log(doc)
		return doc, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	switch ext {
	case ".md", ".markdown":
		doc.Text = MarkdownText(data)
	case ".html", ".htm":
		title, text, err := HTMLText(data)
		if err != nil {
			return doc, err
		}
		doc.Title = title
		doc.Text = text
	default:
		doc.Text = string(data)
	}
	l.log(doc)
	return doc, nil
}

func (l *Loader) log(doc Document) {
	l.logger.Debug().
		Str("filename", doc.Filename).
		Str("file_type", doc.FileType).
		Int("chars", len([]rune(doc.Text))).
		Msg("Document loaded")
}
