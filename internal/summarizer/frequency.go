// Package summarizer builds the short extractive preview stored with each
// ingested document.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	sentencePattern = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
	tokenPattern    = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
)

const (
	defaultMinWords = 4
	defaultMaxRunes = 300
)

// Option configures a FrequencySummarizer.
type Option func(*FrequencySummarizer)

// WithMinWords skips sentences with fewer words, such as headings and list
// stubs. Zero keeps every sentence.
func WithMinWords(n int) Option {
	return func(s *FrequencySummarizer) { s.minWords = n }
}

// WithMaxRunes caps the preview length. Zero disables the cap.
func WithMaxRunes(n int) Option {
	return func(s *FrequencySummarizer) { s.maxRunes = n }
}

// FrequencySummarizer picks the sentences whose content words are most
// frequent across the document.
type FrequencySummarizer struct {
	minWords  int
	maxRunes  int
	stopwords map[string]struct{}
}

// NewFrequencySummarizer returns a summarizer that skips sentences under
// four words and caps previews at 300 runes unless overridden.
func NewFrequencySummarizer(opts ...Option) *FrequencySummarizer {
	s := &FrequencySummarizer{
		minWords:  defaultMinWords,
		maxRunes:  defaultMaxRunes,
		stopwords: defaultStopwords(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type sentence struct {
	idx    int
	text   string
	tokens []string
	score  float64
}

// Summarize returns up to maxSentences sentences in document order. Text
// without sentence terminators is returned whitespace-collapsed and capped.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 2
	}
	candidates := s.sentences(text)
	if len(candidates) == 0 {
		return s.clip(strings.Join(strings.Fields(text), " ")), nil
	}

	weights := s.weights(candidates)
	for i := range candidates {
		candidates[i].score = score(candidates[i].tokens, weights)
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	candidates = candidates[:min(maxSentences, len(candidates))]
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].idx < candidates[j].idx })

	parts := make([]string, len(candidates))
	for i, c := range candidates {
		parts[i] = c.text
	}
	return s.clip(strings.Join(parts, " ")), nil
}

// sentences splits text and drops sentences below minWords. When every
// sentence is short they are all kept.
func (s *FrequencySummarizer) sentences(text string) []sentence {
	raw := sentencePattern.FindAllString(text, -1)
	all := make([]sentence, 0, len(raw))
	long := make([]sentence, 0, len(raw))
	for i, r := range raw {
		t := strings.Join(strings.Fields(r), " ")
		if t == "" {
			continue
		}
		sent := sentence{idx: i, text: t, tokens: tokens(t)}
		all = append(all, sent)
		if len(sent.tokens) >= s.minWords {
			long = append(long, sent)
		}
	}
	if len(long) == 0 {
		return all
	}
	return long
}

// weights returns content-word frequencies scaled to [0,1].
func (s *FrequencySummarizer) weights(sentences []sentence) map[string]float64 {
	freq := make(map[string]float64)
	top := 0.0
	for _, sent := range sentences {
		for _, tok := range sent.tokens {
			if _, stop := s.stopwords[tok]; stop {
				continue
			}
			freq[tok]++
			top = math.Max(top, freq[tok])
		}
	}
	if top > 0 {
		for k, v := range freq {
			freq[k] = v / top
		}
	}
	return freq
}

// score sums the token weights, damped by sqrt of the sentence length.
func score(toks []string, weights map[string]float64) float64 {
	if len(toks) == 0 {
		return 0
	}
	total := 0.0
	for _, tok := range toks {
		total += weights[tok]
	}
	return total / math.Sqrt(float64(len(toks)))
}

// clip cuts text to maxRunes at the last space and marks the cut with "...".
func (s *FrequencySummarizer) clip(text string) string {
	if s.maxRunes <= 0 || utf8.RuneCountInString(text) <= s.maxRunes {
		return text
	}
	r := []rune(text)[:s.maxRunes]
	cut := string(r)
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:") + "..."
}

func tokens(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
