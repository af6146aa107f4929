package retrieval

import (
	"fmt"
	"math"
)

// CosineSimilarity returns dot(a,b)/(|a||b|), or 0 when either vector has
// zero norm. Vectors of different length are a programming error.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("retrieval: cosine similarity of vectors with dimensions %d and %d", len(a), len(b)))
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
