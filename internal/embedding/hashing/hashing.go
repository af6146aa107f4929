package hashing

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// DefaultDimension is used when no dimension is configured.
const DefaultDimension = 512

// Embedder maps text into a fixed-size vector with the hashing trick.
// Unigrams and bigrams are hashed into buckets, weighted by sublinear term
// frequency and L2 normalized. It needs no corpus and no network, so vectors
// stay comparable across ingests and restarts.
type Embedder struct {
	dimension    int
	bigrams      bool
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// Option customises the embedder.
type Option func(*Embedder)

// WithBigrams toggles hashing of adjacent token pairs.
func WithBigrams(enabled bool) Option {
	return func(e *Embedder) { e.bigrams = enabled }
}

// NewEmbedder creates a hashing embedder producing vectors of the given
// dimension.
func NewEmbedder(dimension int, opts ...Option) (*Embedder, error) {
	if dimension <= 0 {
		return nil, errors.New("hashing embedder dimension must be positive")
	}
	e := &Embedder{
		dimension:    dimension,
		bigrams:      true,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
		stopwords:    defaultStopwords(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "hashing" }

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed computes the hashed embedding for the given text. Text without any
// usable token yields the zero vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float64, e.dimension)
	tokens := e.tokenize(text)
	if len(tokens) == 0 {
		return vec, nil
	}

	counts := make(map[int]float64)
	for i, tok := range tokens {
		idx, sign := e.bucket(tok)
		counts[idx] += sign
		if e.bigrams && i > 0 {
			idx, sign = e.bucket(tokens[i-1] + " " + tok)
			counts[idx] += 0.5 * sign
		}
	}
	for idx, c := range counts {
		// Sublinear TF keeps one repeated word from dominating the vector.
		if c > 0 {
			vec[idx] = 1 + math.Log(c)
		} else if c < 0 {
			vec[idx] = -(1 + math.Log(-c))
		}
	}
	// L2 normalize
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

// bucket returns the vector index and sign for a feature.
func (e *Embedder) bucket(feature string) (int, float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	sign := 1.0
	if sum&(1<<63) != 0 {
		sign = -1.0
	}
	return int(sum % uint64(e.dimension)), sign
}

func (e *Embedder) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := e.tokenPattern.FindAllString(lower, -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
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
