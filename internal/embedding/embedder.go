// Package embedding defines the text embedding port and the similarity measure
// used to rank catalog items against a query.
package embedding

import (
	"context"
	"math"
)

// DefaultDimension matches the all-MiniLM-L6-v2 sentence model.
const DefaultDimension = 384

// Embedder converts free text into a fixed-length numeric vector.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CosineSimilarity returns dot(a,b) / (|a| * |b|), clamped to [-1, 1].
// Mismatched, empty and zero-magnitude vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na2) * math.Sqrt(nb2))
	switch {
	case sim > 1:
		return 1
	case sim < -1:
		return -1
	}
	return sim
}
