package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// textObject matches a BT ... ET block. showText matches literal strings
// shown by Tj, ' and " or collected in a TJ array.
var (
	pageFile   = regexp.MustCompile(`page_(\d+)`)
	textObject = regexp.MustCompile(`(?s)\bBT\b(.*?)\bET\b`)
	showText   = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)\s*(?:Tj|'|")|\[((?:[^\]\\]|\\.)*)\]\s*TJ`)
	arrayPart  = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)
)

// PDFText extracts the text shown on each page of the PDF at path. Pages are
// separated by blank lines. Only literal strings are decoded, which covers
// PDFs written with standard fonts.
func PDFText(path string) (string, error) {
	outDir, err := os.MkdirTemp("", "docqa-pdf-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(path, outDir, nil, conf); err != nil {
		return "", fmt.Errorf("failed to extract PDF content: %w", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return "", err
	}
	type page struct {
		num  int
		text string
	}
	var pages []page
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, e.Name()))
		if err != nil {
			return "", err
		}
		num := 0
		if m := pageFile.FindStringSubmatch(e.Name()); m != nil {
			num, _ = strconv.Atoi(m[1])
		}
		pages = append(pages, page{num: num, text: contentText(string(content))})
	}
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].num < pages[j].num })

	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if t := strings.TrimSpace(p.text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// contentText pulls the shown strings out of a decoded content stream. Each
// text object becomes one line.
func contentText(stream string) string {
	var lines []string
	for _, obj := range textObject.FindAllStringSubmatch(stream, -1) {
		var b strings.Builder
		for _, m := range showText.FindAllStringSubmatch(obj[1], -1) {
			if m[2] != "" {
				for _, part := range arrayPart.FindAllStringSubmatch(m[2], -1) {
					b.WriteString(unescape(part[1]))
				}
				continue
			}
			b.WriteString(unescape(m[1]))
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "\n")
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			n, _ := strconv.ParseUint(s[i:j], 8, 8)
			b.WriteByte(byte(n))
			i = j - 1
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
