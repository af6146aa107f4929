// Package prompt assembles the text sent to the generator for document
// analysis and for question answering.
package prompt

import (
	"bytes"
	"strings"
	"text/template"
)

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var funcs = template.FuncMap{
	"inc":  func(i int) int { return i + 1 },
	"trim": strings.TrimSpace,
}
