package tfidf

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Embedder is a TF-IDF vectorizer that folds terms into a fixed number of
// buckets with feature hashing, so every vector has the same dimension
// regardless of corpus vocabulary.
type Embedder struct {
	mu           sync.RWMutex
	idf          map[string]float64
	dimension    int
	prepared     bool
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewEmbedder creates an unprepared embedder producing vectors of the given
// dimension.
func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = 384
	}
	return &Embedder{
		idf:          make(map[string]float64),
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Prepare computes IDF weights from the provided corpus.
func (e *Embedder) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF prepare")
	}
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range e.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return errors.New("no tokens found in corpus; ensure tokenizer supports your language")
	}
	idf := make(map[string]float64, len(df))
	n := float64(len(corpus))
	for term, count := range df {
		// Smoothed IDF
		idf[term] = math.Log((1+n)/(1+float64(count))) + 1.0
	}
	e.mu.Lock()
	e.idf = idf
	e.prepared = true
	e.mu.Unlock()
	return nil
}

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed computes the hashed TF-IDF embedding for the given text. Terms outside
// the prepared vocabulary are ignored, so text with no known terms yields the
// zero vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.prepared {
		return nil, errors.New("tfidf embedder not prepared")
	}
	tf := make(map[string]int)
	total := 0
	for _, tok := range e.tokenize(text) {
		if _, ok := e.idf[tok]; ok {
			tf[tok]++
			total++
		}
	}
	acc := make([]float64, e.dimension)
	if total == 0 {
		return make([]float32, e.dimension), nil
	}
	terms := make([]string, 0, len(tf))
	for term := range tf {
		terms = append(terms, term)
	}
	// Stable summation order keeps colliding buckets deterministic
	sort.Strings(terms)
	for _, term := range terms {
		acc[bucket(term, e.dimension)] += float64(tf[term]) / float64(total) * e.idf[term]
	}
	// L2 normalize
	norm := 0.0
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	vec := make([]float32, e.dimension)
	for i, v := range acc {
		if norm > 0 {
			v /= norm
		}
		vec[i] = float32(v)
	}
	return vec, nil
}

func bucket(term string, dimension int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(term))
	return int(h.Sum32() % uint32(dimension))
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
		"me", "my", "i", "you", "your", "what", "which", "who", "do", "does", "tell",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
