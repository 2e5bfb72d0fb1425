package embedding

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
		delta    float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1.0, 0.001},
		{"orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 0.0, 0.001},
		{"opposite", []float32{1, 0, 0}, []float32{-1, 0, 0}, -1.0, 0.001},
		{"similar", []float32{1, 1, 0}, []float32{1, 0, 0}, 0.707, 0.01},
		{"scaled", []float32{2, 4, 6}, []float32{1, 2, 3}, 1.0, 0.001},
		{"empty", []float32{}, []float32{}, 0.0, 0.001},
		{"different lengths", []float32{1, 0}, []float32{1, 0, 0}, 0.0, 0.001},
		{"zero vector", []float32{0, 0, 0}, []float32{1, 0, 0}, 0.0, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("CosineSimilarity(%v, %v) = %f, want %f (±%f)", tt.a, tt.b, got, tt.expected, tt.delta)
			}
		})
	}
}

func TestCosineSimilaritySymmetricAndBounded(t *testing.T) {
	vectors := [][]float32{
		{0.3, -1.2, 4.5, 0},
		{-0.7, 2.2, 0.1, 9},
		{1e-3, 1e-3, 1e-3, 1e-3},
		{-5, -5, -5, -5},
		{0.1, 0.2, 0.3, 0.4},
	}
	for i := range vectors {
		for j := range vectors {
			ab := CosineSimilarity(vectors[i], vectors[j])
			ba := CosineSimilarity(vectors[j], vectors[i])
			if ab != ba {
				t.Fatalf("sim(%d,%d)=%v != sim(%d,%d)=%v", i, j, ab, j, i, ba)
			}
			if ab < -1 || ab > 1 {
				t.Fatalf("sim(%d,%d)=%v out of [-1,1]", i, j, ab)
			}
		}
	}
}
