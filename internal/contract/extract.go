package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencedObject = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	bareObject   = regexp.MustCompile(`(?s)\{.*\}`)
)

// ParseError reports generated text that holds no decodable JSON object.
type ParseError struct {
	Snippet string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse JSON from generator response: %v (response: %q)", e.Err, e.Snippet)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ExtractJSON pulls a JSON object out of generated text. It tries a fenced
// code block, then the outermost brace span, then the whole text.
func ExtractJSON(text string) (map[string]any, error) {
	candidate := strings.TrimSpace(text)
	if m := fencedObject.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	} else if m := bareObject.FindString(text); m != "" {
		candidate = m
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(candidate)))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, &ParseError{Snippet: snippet(text), Err: err}
	}
	if raw == nil {
		return nil, &ParseError{Snippet: snippet(text), Err: fmt.Errorf("response is not a JSON object")}
	}
	return raw, nil
}

func snippet(s string) string {
	r := []rune(s)
	if len(r) > 200 {
		return string(r[:200]) + "..."
	}
	return s
}
