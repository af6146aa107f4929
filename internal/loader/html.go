package loader

import (
	"bytes"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// HTMLText returns the page title and the body as plain text. The body is
// converted to Markdown first so headings, lists and paragraphs keep their
// breaks.
func HTMLText(src []byte) (title, body string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(src))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	title = strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("script, style, noscript, head").Remove()

	sel := doc.Find("body")
	if sel.Length() == 0 {
		sel = doc.Selection
	}
	html, err := sel.Html()
	if err != nil {
		return title, "", fmt.Errorf("failed to render HTML: %w", err)
	}

	converted, err := md.NewConverter("", true, nil).ConvertString(html)
	if err != nil || strings.TrimSpace(converted) == "" {
		return title, tidy(sel.Text()), nil
	}
	return title, MarkdownText([]byte(converted)), nil
}
