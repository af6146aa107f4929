// Package retrieval ranks candidate vectors against a query and composes
// an embedder and a document store into top-k chunk retrieval.
package retrieval

import "sort"

// Candidate is anything with a vector that can be ranked.
type Candidate[T any] struct {
	Ref    T
	Vector []float64
}

// Scored is a ranked candidate reference.
type Scored[T any] struct {
	Ref   T
	Score float64
}

// Rank scores every candidate against query and returns at most topK of
// them, highest score first. Equal scores keep their input order.
func Rank[T any](query []float64, candidates []Candidate[T], topK int) []Scored[T] {
	if topK <= 0 || len(candidates) == 0 {
		return []Scored[T]{}
	}
	scored := make([]Scored[T], len(candidates))
	for i, c := range candidates {
		scored[i] = Scored[T]{Ref: c.Ref, Score: CosineSimilarity(query, c.Vector)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK < len(scored) {
		scored = scored[:topK]
	}
	return scored
}
