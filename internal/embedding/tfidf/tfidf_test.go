package tfidf

import (
	"context"
	"math"
	"testing"
)

var corpus = []string{
	"Intro to Go Learn the basics of the Go programming language",
	"Advanced Databases Query planning, indexing and transactions",
	"Jane Doe Systems engineer who teaches Go and distributed systems",
}

func prepared(t *testing.T) *Embedder {
	t.Helper()
	e := NewEmbedder(384)
	if err := e.Prepare(corpus); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	return e
}

func TestEmbedBeforePrepare(t *testing.T) {
	e := NewEmbedder(16)
	if _, err := e.Embed(context.Background(), "hello"); err == nil {
		t.Fatal("expected error embedding before Prepare")
	}
}

func TestPrepareEmptyCorpus(t *testing.T) {
	if err := NewEmbedder(16).Prepare(nil); err == nil {
		t.Fatal("expected error for empty corpus")
	}
}

func TestEmbedFixedDimensionAndNormalized(t *testing.T) {
	e := prepared(t)
	vec, err := e.Embed(context.Background(), "Go programming and indexing")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vec) != 384 || e.Dimension() != 384 {
		t.Fatalf("want 384 dims, got %d (Dimension()=%d)", len(vec), e.Dimension())
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-5 {
		t.Fatalf("expected unit vector, norm=%f", math.Sqrt(norm))
	}
}

func TestEmbedDeterministic(t *testing.T) {
	e := prepared(t)
	a, _ := e.Embed(context.Background(), corpus[0])
	b, _ := e.Embed(context.Background(), corpus[0])
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding not deterministic at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestEmbedUnknownTextIsZero(t *testing.T) {
	e := prepared(t)
	for _, text := range []string{"", "zzz qqq", "the of and"} {
		vec, err := e.Embed(context.Background(), text)
		if err != nil {
			t.Fatalf("embed %q: %v", text, err)
		}
		if len(vec) != 384 {
			t.Fatalf("embed %q: want 384 dims, got %d", text, len(vec))
		}
		for i, v := range vec {
			if v != 0 {
				t.Fatalf("embed %q: expected zero vector, got %v at %d", text, v, i)
			}
		}
	}
}

func TestTokenizeDropsStopwords(t *testing.T) {
	e := NewEmbedder(8)
	got := e.tokenize("Tell me about The Basics of X")
	want := []string{"basics", "x"}
	if len(got) != len(want) {
		t.Fatalf("tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokenize = %v, want %v", got, want)
		}
	}
}
